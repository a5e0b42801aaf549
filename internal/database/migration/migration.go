package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created last; its presence means the schema is complete.
const sentinelTable = "public.crm_workflow_runs"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_tenants",
		SQL: `CREATE TABLE IF NOT EXISTS tenants (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id  UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  email      TEXT        NOT NULL UNIQUE,
  name       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_email_codes",
		SQL: `CREATE TABLE IF NOT EXISTS email_codes (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email       TEXT        NOT NULL,
  code_hash   TEXT        NOT NULL,
  expires_at  TIMESTAMPTZ NOT NULL,
  attempts    INT         NOT NULL DEFAULT 0,
  consumed_at TIMESTAMPTZ,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_email_codes_email ON email_codes (email, created_at DESC);`,
	},
	{
		Name: "create_table_crm_objects",
		SQL: `CREATE TABLE IF NOT EXISTS crm_objects (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id    UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  name         TEXT        NOT NULL CHECK (name ~ '^[a-z][a-z0-9_]*$'),
  label        TEXT        NOT NULL,
  plural_label TEXT        NOT NULL,
  description  TEXT        NOT NULL DEFAULT '',
  icon         TEXT        NOT NULL DEFAULT '',
  position     INT         NOT NULL DEFAULT 0,
  stages       JSONB       NOT NULL DEFAULT '[]',
  is_system    BOOLEAN     NOT NULL DEFAULT false,
  archived     BOOLEAN     NOT NULL DEFAULT false,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (tenant_id, name)
);`,
	},
	{
		Name: "create_table_crm_fields",
		SQL: `CREATE TABLE IF NOT EXISTS crm_fields (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id  UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  object_id  UUID        NOT NULL REFERENCES crm_objects(id) ON DELETE CASCADE,
  name       TEXT        NOT NULL CHECK (name ~ '^[a-z][a-z0-9_]*$'),
  label      TEXT        NOT NULL,
  type       TEXT        NOT NULL,
  required   BOOLEAN     NOT NULL DEFAULT false,
  position   INT         NOT NULL DEFAULT 0,
  config     JSONB       NOT NULL DEFAULT '{}',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (object_id, name)
);`,
	},
	{
		Name: "create_table_crm_records",
		SQL: `CREATE TABLE IF NOT EXISTS crm_records (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id  UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  object_id  UUID        NOT NULL REFERENCES crm_objects(id) ON DELETE RESTRICT,
  data       JSONB       NOT NULL DEFAULT '{}',
  owner_id   UUID        REFERENCES users(id) ON DELETE SET NULL,
  stage      TEXT,
  archived   BOOLEAN     NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_crm_records_object ON crm_records (tenant_id, object_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_crm_records_data ON crm_records USING GIN (data);`,
	},
	{
		Name: "create_table_crm_relations",
		SQL: `CREATE TABLE IF NOT EXISTS crm_relations (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id      UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  type           TEXT        NOT NULL,
  from_record_id UUID        NOT NULL REFERENCES crm_records(id) ON DELETE CASCADE,
  to_record_id   UUID        NOT NULL REFERENCES crm_records(id) ON DELETE CASCADE,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (type, from_record_id, to_record_id),
  CHECK (from_record_id <> to_record_id)
);
CREATE INDEX IF NOT EXISTS idx_crm_relations_to ON crm_relations (to_record_id);`,
	},
	{
		Name: "create_table_projects",
		SQL: `CREATE TABLE IF NOT EXISTS projects (
  id          UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id   UUID          NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  name        TEXT          NOT NULL,
  description TEXT          NOT NULL DEFAULT '',
  status      TEXT          NOT NULL DEFAULT 'planned',
  record_id   UUID          REFERENCES crm_records(id) ON DELETE SET NULL,
  owner_id    UUID          REFERENCES users(id) ON DELETE SET NULL,
  start_date  TIMESTAMPTZ,
  due_date    TIMESTAMPTZ,
  budget      NUMERIC(18,2),
  created_at  TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_tasks",
		SQL: `CREATE TABLE IF NOT EXISTS tasks (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id   UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  project_id  UUID        REFERENCES projects(id) ON DELETE CASCADE,
  record_id   UUID        REFERENCES crm_records(id) ON DELETE SET NULL,
  title       TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  status      TEXT        NOT NULL DEFAULT 'todo',
  priority    TEXT        NOT NULL DEFAULT 'medium',
  assignee_id UUID        REFERENCES users(id) ON DELETE SET NULL,
  due_date    TIMESTAMPTZ,
  position    INT         NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tasks_board ON tasks (tenant_id, project_id, status, position);`,
	},
	{
		Name: "create_table_time_entries",
		SQL: `CREATE TABLE IF NOT EXISTS time_entries (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id        UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  user_id          UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  project_id       UUID        REFERENCES projects(id) ON DELETE SET NULL,
  task_id          UUID        REFERENCES tasks(id) ON DELETE SET NULL,
  description      TEXT        NOT NULL DEFAULT '',
  started_at       TIMESTAMPTZ NOT NULL,
  ended_at         TIMESTAMPTZ,
  duration_seconds BIGINT      NOT NULL DEFAULT 0 CHECK (duration_seconds >= 0),
  billable         BOOLEAN     NOT NULL DEFAULT false,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_time_entries_running ON time_entries (user_id) WHERE ended_at IS NULL;`,
	},
	{
		Name: "create_table_calendar_events",
		SQL: `CREATE TABLE IF NOT EXISTS calendar_events (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id   UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  title       TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  location    TEXT        NOT NULL DEFAULT '',
  start_at    TIMESTAMPTZ NOT NULL,
  end_at      TIMESTAMPTZ NOT NULL CHECK (end_at >= start_at),
  all_day     BOOLEAN     NOT NULL DEFAULT false,
  record_id   UUID        REFERENCES crm_records(id) ON DELETE SET NULL,
  attendees   JSONB       NOT NULL DEFAULT '[]',
  created_by  UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_calendar_events_range ON calendar_events (tenant_id, start_at, end_at);`,
	},
	{
		Name: "create_table_email_templates",
		SQL: `CREATE TABLE IF NOT EXISTS email_templates (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id  UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  name       TEXT        NOT NULL,
  subject    TEXT        NOT NULL,
  body       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (tenant_id, name)
);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id  UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  user_id    UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  type       TEXT        NOT NULL,
  title      TEXT        NOT NULL,
  body       TEXT        NOT NULL DEFAULT '',
  link       TEXT        NOT NULL DEFAULT '',
  read_at    TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (user_id, created_at DESC) WHERE read_at IS NULL;`,
	},
	{
		Name: "create_table_comments",
		SQL: `CREATE TABLE IF NOT EXISTS comments (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id   UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  entity_type TEXT        NOT NULL,
  entity_id   UUID        NOT NULL,
  author_id   UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  body        TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_comments_entity ON comments (tenant_id, entity_type, entity_id, created_at);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id     UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  entity_type   TEXT,
  entity_id     UUID,
  filename      TEXT        NOT NULL,
  original_name TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL UNIQUE,
  size          BIGINT      NOT NULL CHECK (size >= 0),
  content_type  TEXT        NOT NULL,
  uploaded_by   UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_files_entity ON files (tenant_id, entity_type, entity_id);`,
	},
	{
		Name: "create_table_crm_workflows",
		SQL: `CREATE TABLE IF NOT EXISTS crm_workflows (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id   UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  name        TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  object_id   UUID        REFERENCES crm_objects(id) ON DELETE CASCADE,
  active      BOOLEAN     NOT NULL DEFAULT false,
  trigger     JSONB       NOT NULL,
  conditions  JSONB       NOT NULL DEFAULT '[]',
  actions     JSONB       NOT NULL DEFAULT '[]',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_crm_workflows_active ON crm_workflows (tenant_id, active, (trigger->>'type'));`,
	},
	{
		Name: "create_table_crm_workflow_runs",
		SQL: `CREATE TABLE IF NOT EXISTS crm_workflow_runs (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  tenant_id   UUID        NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  workflow_id UUID        NOT NULL REFERENCES crm_workflows(id) ON DELETE CASCADE,
  record_id   UUID,
  status      TEXT        NOT NULL,
  error       TEXT        NOT NULL DEFAULT '',
  started_at  TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_crm_workflow_runs_workflow ON crm_workflow_runs (workflow_id, started_at DESC);`,
	},
}

// EnsureMigrated checks if the sentinel table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log logrus.FieldLogger, dbHost string) error {
	start := time.Now()
	log = log.WithFields(logrus.Fields{"component": "database", "db_host": dbHost})

	log.WithFields(logrus.Fields{"event": "db_migration_check", "status": "starting"}).Info("checking schema")

	var exists bool
	query := "SELECT to_regclass('" + sentinelTable + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"status":      "error",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"status":      "success",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	log.WithFields(logrus.Fields{"event": "db_migration_start", "status": "in_progress"}).Info("applying migrations")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).WithError(err).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Info("migration step applied")
	}

	log.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("migrations complete")

	return nil
}
