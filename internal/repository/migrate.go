package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const analysisJobTable = "analysis_job"

var (
	analysisJobColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "file_name", Type: field.TypeString},
		{Name: "content_hash", Type: field.TypeString, Size: 64},
		{Name: "format", Type: field.TypeString},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "finished_at", Type: field.TypeTime, Nullable: true},
		{Name: "status", Type: field.TypeString},
		{Name: "analysis_method", Type: field.TypeString, Nullable: true},
		{Name: "room_count", Type: field.TypeInt, Default: 0},
		{Name: "floors", Type: field.TypeInt, Default: 0},
		{Name: "error_message", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "result_json", Type: field.TypeString, Nullable: true, Size: 2147483647, SchemaType: map[string]string{dialect.Postgres: "text"}},
		{Name: "archive_key", Type: field.TypeString, Nullable: true},
	}
	analysisJobTableDef = &schema.Table{
		Name:       analysisJobTable,
		Columns:    analysisJobColumns,
		PrimaryKey: []*schema.Column{analysisJobColumns[0]},
		Indexes: []*schema.Index{
			{Name: "analysisjob_content_hash", Columns: []*schema.Column{analysisJobColumns[2]}},
			{Name: "analysisjob_status_started_at", Columns: []*schema.Column{analysisJobColumns[6], analysisJobColumns[4]}},
		},
	}
)

// Migrate creates or updates the tables used by the job store.
func (d *DB) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(d.Driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, analysisJobTableDef); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	d.logger.Info("database schema up to date", "tables", []string{analysisJobTable})
	return nil
}
