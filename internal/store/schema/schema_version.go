package schema

// SchemaVersion is the single-row marker of the applied migration level.
// Only the migrator reads or writes it.
type SchemaVersion struct {
	Version int `gorm:"column:version;primaryKey"`
}

// TableName specifies the table name for the SchemaVersion model
func (SchemaVersion) TableName() string {
	return "schema_versions"
}
