// Package services contains the core vault pipeline: the assembler
// that builds vault content from the document source, the codec that
// serialises payloads for the cache, the cache manager that decides
// between cached, fresh, and fallback payloads, the chat service that
// injects vault context into completions, and the admin operations.
package services
