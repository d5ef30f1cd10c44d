package output

// SchemaVersion is the current version of the NDJSON output schema.
// Increment it on breaking changes to record shapes.
const SchemaVersion = 1
