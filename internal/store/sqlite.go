package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/engram/internal/concept"
	"github.com/nvandessel/engram/internal/units"
	"github.com/nvandessel/engram/internal/workspace"
)

// SQLiteStore persists a workspace of concepts and the unit registry in a
// SQLite database under <root>/.engram/engram.db.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database rooted at projectRoot and
// initializes the schema.
func NewSQLiteStore(projectRoot string) (*SQLiteStore, error) {
	engramDir := filepath.Join(projectRoot, ".engram")

	if err := os.MkdirAll(engramDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .engram directory: %w", err)
	}

	dbPath := filepath.Join(engramDir, "engram.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ValidateIntegrity runs SQLite integrity and foreign-key checks.
func (s *SQLiteStore) ValidateIntegrity(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ValidateIntegrity(ctx, s.db)
}

// SaveConcept upserts one concept and its full ensemble/relationship graph
// in a single transaction. position fixes the concept's workspace order.
func (s *SQLiteStore) SaveConcept(ctx context.Context, c *concept.Concept, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("marshal concept metadata: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO concepts (id, name, description, inhibition_gain, activation_threshold, metadata, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			inhibition_gain = excluded.inhibition_gain,
			activation_threshold = excluded.activation_threshold,
			metadata = excluded.metadata,
			position = excluded.position,
			updated_at = datetime('now')`,
		c.ID.String(), c.Name, c.Description, c.InhibitionGain, c.ActivationThreshold,
		string(metadata), position); err != nil {
		return fmt.Errorf("upsert concept %s: %w", c.Name, err)
	}

	// Replace the dependent rows wholesale; the graph is small and always
	// loaded whole.
	if _, err := tx.ExecContext(ctx, `DELETE FROM ensembles WHERE concept_id = ?`, c.ID.String()); err != nil {
		return fmt.Errorf("clear ensembles: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE concept_id = ?`, c.ID.String()); err != nil {
		return fmt.Errorf("clear relationships: %w", err)
	}

	for i, e := range c.Ensembles() {
		vector, err := json.Marshal(e.Vector)
		if err != nil {
			return fmt.Errorf("marshal vector for %s: %w", e.Name, err)
		}
		links := make(map[string]float64, len(e.Links))
		for target, w := range e.Links {
			links[target.String()] = w
		}
		linksJSON, err := json.Marshal(links)
		if err != nil {
			return fmt.Errorf("marshal links for %s: %w", e.Name, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ensembles (id, concept_id, name, modality, description, vector, links, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID.String(), c.ID.String(), e.Name, e.Modality, e.Description,
			string(vector), string(linksJSON), i); err != nil {
			return fmt.Errorf("insert ensemble %s: %w", e.Name, err)
		}
	}

	for i, r := range c.Relationships {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO relationships (concept_id, position, relation_type, target_concept_id, description)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID.String(), i, r.RelationType, r.TargetConceptID.String(), r.Description); err != nil {
			return fmt.Errorf("insert relationship %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadConcept loads one concept by name with its full graph.
func (s *SQLiteStore) LoadConcept(ctx context.Context, name string) (*concept.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, inhibition_gain, activation_threshold, metadata
		FROM concepts WHERE name = ?`, name)
	c, err := scanConcept(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("concept %q not found", name)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadConceptGraph(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadWorkspace loads every stored concept into a workspace, in position
// order.
func (s *SQLiteStore) LoadWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, inhibition_gain, activation_threshold, metadata
		FROM concepts ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("query concepts: %w", err)
	}
	defer rows.Close()

	var concepts []*concept.Concept
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, err
		}
		concepts = append(concepts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate concepts: %w", err)
	}

	w := workspace.New()
	for _, c := range concepts {
		if err := s.loadConceptGraph(ctx, c); err != nil {
			return nil, err
		}
		w.Add(c)
	}
	return w, nil
}

// SaveWorkspace persists every concept in the workspace, preserving its
// insertion order, and removes stored concepts no longer present.
func (s *SQLiteStore) SaveWorkspace(ctx context.Context, w *workspace.Workspace) error {
	keep := make(map[string]bool, w.Len())
	for i, c := range w.Concepts() {
		keep[c.ID.String()] = true
		if err := s.SaveConcept(ctx, c, i); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM concepts`)
	if err != nil {
		return fmt.Errorf("query stored concepts: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan concept id: %w", err)
		}
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate stored concepts: %w", err)
	}

	for _, id := range stale {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM concepts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete stale concept %s: %w", id, err)
		}
	}
	return nil
}

// DeleteConcept removes one concept by name. Ensembles and relationships
// cascade; edges in other concepts that reference it stay (weak references).
func (s *SQLiteStore) DeleteConcept(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM concepts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete concept %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("concept %q not found", name)
	}
	return nil
}

// ListConcepts returns stored concept names in position order.
func (s *SQLiteStore) ListConcepts(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM concepts ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("query concept names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan concept name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveUnits replaces the stored unit registry.
func (s *SQLiteStore) SaveUnits(ctx context.Context, store *units.UnitStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM units`); err != nil {
		return fmt.Errorf("clear units: %w", err)
	}

	for _, key := range store.Keys() {
		u, _ := store.Get(key)
		vector, err := json.Marshal(u.Vector)
		if err != nil {
			return fmt.Errorf("marshal vector for unit %s: %w", key, err)
		}
		attrs, err := json.Marshal(u.Attributes)
		if err != nil {
			return fmt.Errorf("marshal attributes for unit %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO units (key, modality, vector, attributes) VALUES (?, ?, ?, ?)`,
			key, u.Modality, string(vector), string(attrs)); err != nil {
			return fmt.Errorf("insert unit %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// LoadUnits loads the stored unit registry.
func (s *SQLiteStore) LoadUnits(ctx context.Context) (*units.UnitStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, modality, vector, attributes FROM units`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	store := units.NewUnitStore()
	for rows.Next() {
		var key, modality, vectorJSON, attrsJSON string
		if err := rows.Scan(&key, &modality, &vectorJSON, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		var vector []float64
		if err := json.Unmarshal([]byte(vectorJSON), &vector); err != nil {
			return nil, fmt.Errorf("parse vector for unit %s: %w", key, err)
		}
		var attrs map[string]string
		if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
			return nil, fmt.Errorf("parse attributes for unit %s: %w", key, err)
		}
		store.Add(units.FeatureUnit{Key: key, Modality: modality, Vector: vector, Attributes: attrs})
	}
	return store, rows.Err()
}

// rowScanner abstracts sql.Row and sql.Rows for scanConcept.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanConcept reads one concepts row into a Concept (graph not yet loaded).
func scanConcept(row rowScanner) (*concept.Concept, error) {
	var idStr, name, description, metadataJSON string
	var inhibitionGain, activationThreshold float64
	if err := row.Scan(&idStr, &name, &description, &inhibitionGain, &activationThreshold, &metadataJSON); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse concept id %q: %w", idStr, err)
	}

	c := concept.New(name, description)
	c.ID = id
	c.InhibitionGain = inhibitionGain
	c.ActivationThreshold = activationThreshold
	if metadataJSON != "" {
		var metadata map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("parse metadata for concept %s: %w", name, err)
		}
		if metadata != nil {
			c.Metadata = metadata
		}
	}
	return c, nil
}

// loadConceptGraph fills in a concept's ensembles and relationships.
func (s *SQLiteStore) loadConceptGraph(ctx context.Context, c *concept.Concept) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, modality, description, vector, links
		FROM ensembles WHERE concept_id = ? ORDER BY position`, c.ID.String())
	if err != nil {
		return fmt.Errorf("query ensembles: %w", err)
	}
	for rows.Next() {
		var idStr, name, modality, description, vectorJSON, linksJSON string
		if err := rows.Scan(&idStr, &name, &modality, &description, &vectorJSON, &linksJSON); err != nil {
			rows.Close()
			return fmt.Errorf("scan ensemble: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			rows.Close()
			return fmt.Errorf("parse ensemble id %q: %w", idStr, err)
		}
		var vector []float64
		if err := json.Unmarshal([]byte(vectorJSON), &vector); err != nil {
			rows.Close()
			return fmt.Errorf("parse vector for ensemble %s: %w", name, err)
		}
		var rawLinks map[string]float64
		if err := json.Unmarshal([]byte(linksJSON), &rawLinks); err != nil {
			rows.Close()
			return fmt.Errorf("parse links for ensemble %s: %w", name, err)
		}

		e := &concept.FeatureEnsemble{
			ID:          id,
			Name:        name,
			Modality:    modality,
			Description: description,
			Vector:      vector,
			Links:       make(map[uuid.UUID]float64, len(rawLinks)),
		}
		for targetStr, w := range rawLinks {
			target, err := uuid.Parse(targetStr)
			if err != nil {
				rows.Close()
				return fmt.Errorf("parse link target %q for ensemble %s: %w", targetStr, name, err)
			}
			e.Links[target] = w
		}
		c.AddEnsemble(e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate ensembles: %w", err)
	}
	rows.Close()

	relRows, err := s.db.QueryContext(ctx, `
		SELECT relation_type, target_concept_id, description
		FROM relationships WHERE concept_id = ? ORDER BY position`, c.ID.String())
	if err != nil {
		return fmt.Errorf("query relationships: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var relType, targetStr, description string
		if err := relRows.Scan(&relType, &targetStr, &description); err != nil {
			return fmt.Errorf("scan relationship: %w", err)
		}
		target, err := uuid.Parse(targetStr)
		if err != nil {
			return fmt.Errorf("parse relationship target %q: %w", targetStr, err)
		}
		c.AddRelationship(relType, target, description)
	}
	return relRows.Err()
}
