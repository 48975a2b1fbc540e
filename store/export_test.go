package store

const (
	SchemaQuery = schemaQuery
	InsertQuery = insertQuery
	ListQuery   = listQuery
)
