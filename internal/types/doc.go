/*
Package types defines data structures shared between the executor, the
history store and the user-facing surfaces.

# Call Results

CallResult:
  - Endpoint name, method and derived URL
  - Status code (0 for transport failures)
  - Raw body and decoded JSON payload
  - Duration and response size
  - Failure message, empty on success

# History

HistoryEntry:
  - Persisted call record
  - Timestamp, endpoint, market, URL
  - Status, duration, size, failure message
*/
package types
