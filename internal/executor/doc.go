/*
Package executor dispatches market-data calls and classifies their outcome.

# Overview

Execute issues exactly one request for an already derived URL and returns a
types.CallResult. There is no retry, no backoff and no caching; a call
either succeeds with a decoded JSON payload or fails with one message.

# Failure Messages

Three kinds of failure are distinguished:
  - Transport failure (no HTTP response): DescribeTransportError
  - Non-2xx with a JSON body carrying an "error" string: that string
  - Non-2xx without one: "HTTP error! status: N"

A 2xx response whose body is not valid JSON is also a failure.

# Cancellation

Execute honours its context. Callers that supersede an in-flight call
cancel the previous context; the cancelled call reports "Request cancelled".

# Formatting Helpers

FormatDuration, FormatSize and PrettyPayload are shared by the CLI and the
TUI when rendering results.
*/
package executor
