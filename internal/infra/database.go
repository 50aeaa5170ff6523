package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. Schema is managed
// exclusively via the SQL-first migration statements below — AutoMigrate is
// not used, keeping full control over enum-like CHECK constraints, sequences
// and indexes.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// migrationStatements are idempotent DDL statements executed in order at
// startup (and from tests against a disposable database).
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,

	`CREATE TABLE IF NOT EXISTS usuarios (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		nombre TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		rol VARCHAR(20) NOT NULL CHECK (rol IN ('superusuario','jefe_tecnico','oficina','tecnico')),
		activo BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,

	`CREATE TABLE IF NOT EXISTS maquinas (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		numero_interno TEXT NOT NULL UNIQUE,
		numero_serie TEXT NOT NULL,
		modelo TEXT NOT NULL,
		marca TEXT,
		ubicacion TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_maquinas_ubicacion ON maquinas (ubicacion);`,

	`CREATE SEQUENCE IF NOT EXISTS averias_codigo_seq;`,
	`CREATE TABLE IF NOT EXISTS averias (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		codigo TEXT NOT NULL UNIQUE,
		estado VARCHAR(20) NOT NULL DEFAULT 'abierta' CHECK (estado IN ('abierta','cerrada','pendiente')),
		urgencia INT NOT NULL DEFAULT 2 CHECK (urgencia BETWEEN 1 AND 3),
		medio_contacto VARCHAR(20),
		email_contacto TEXT NOT NULL,
		persona_contacto TEXT NOT NULL,
		horario_solicitado TEXT,
		id_maquina UUID NOT NULL REFERENCES maquinas(id),
		id_tecnico_asignado UUID REFERENCES usuarios(id),
		estado_maquina VARCHAR(20),
		tipo_averia VARCHAR(20) NOT NULL CHECK (tipo_averia IN ('hardware','software','conectividad','suministros','otros')),
		observaciones TEXT,
		creado_por UUID NOT NULL REFERENCES usuarios(id),
		fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		fecha_actualizacion TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_averias_estado ON averias (estado);`,
	`CREATE INDEX IF NOT EXISTS idx_averias_tecnico ON averias (id_tecnico_asignado);`,
	`CREATE INDEX IF NOT EXISTS idx_averias_maquina ON averias (id_maquina);`,
	`CREATE INDEX IF NOT EXISTS idx_averias_fecha_creacion ON averias (fecha_creacion DESC);`,

	`CREATE SEQUENCE IF NOT EXISTS visitas_codigo_seq;`,
	`CREATE TABLE IF NOT EXISTS visitas (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		codigo TEXT NOT NULL UNIQUE,
		id_averia UUID NOT NULL REFERENCES averias(id) ON DELETE CASCADE,
		id_tecnico UUID REFERENCES usuarios(id),
		fecha_visita TIMESTAMPTZ NOT NULL,
		fecha_programada TIMESTAMPTZ NOT NULL,
		estado VARCHAR(20) NOT NULL DEFAULT 'pendiente' CHECK (estado IN ('pendiente','programada','en_progreso','completada','cancelada')),
		contador_color INT CHECK (contador_color >= 0),
		contador_bn INT CHECK (contador_bn >= 0),
		contador_escaner INT CHECK (contador_escaner >= 0),
		descripcion_solucion TEXT,
		solucion_aplicada TEXT,
		estado_final_maquina VARCHAR(20),
		pieza_1 TEXT, estado_pieza_1 VARCHAR(20),
		pieza_2 TEXT, estado_pieza_2 VARCHAR(20),
		pieza_3 TEXT, estado_pieza_3 VARCHAR(20),
		mantenimiento JSONB NOT NULL DEFAULT '[]',
		fecha_inicio TIMESTAMPTZ,
		fecha_fin TIMESTAMPTZ,
		observaciones TEXT,
		creado_por UUID NOT NULL REFERENCES usuarios(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_visitas_averia ON visitas (id_averia);`,
	`CREATE INDEX IF NOT EXISTS idx_visitas_tecnico ON visitas (id_tecnico);`,
	`CREATE INDEX IF NOT EXISTS idx_visitas_fecha_visita ON visitas (fecha_visita DESC);`,
}

// RunMigrations applies the migration statements; each is idempotent so
// re-running against an existing schema is a no-op.
func RunMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
