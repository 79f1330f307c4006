// Package repositories implements the nomenclature graph on Neo4j: chapters
// contain headings, headings contain subheadings, and legal notes attach to
// the level their scope names.
package repositories

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	driver "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

// PathSegment is one level on the walk from a subheading up to its chapter.
type PathSegment struct {
	Level string `json:"level"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// NomenclatureGraphRepository maintains and queries the nomenclature
// hierarchy.
type NomenclatureGraphRepository interface {
	EnsureConstraints(ctx context.Context) error
	UpsertHierarchy(ctx context.Context, entries []catalog.Entry) (int64, error)
	AttachNotes(ctx context.Context, notes []catalog.LegalNote) (int64, error)

	// PathToRoot walks a 6-digit subheading up to its chapter, chapter first.
	PathToRoot(ctx context.Context, code string) ([]PathSegment, error)

	// SiblingHeadings returns the other headings under the same chapter,
	// which the same-level comparison stage cites as legal references.
	SiblingHeadings(ctx context.Context, heading string) ([]string, error)

	// NotesInScope returns the legal notes attached to any level above the
	// given subheading.
	NotesInScope(ctx context.Context, code string) ([]catalog.LegalNote, error)

	Stats(ctx context.Context) (map[string]int64, error)
}

type nomenclatureGraphRepo struct {
	driver driver.DriverInterface
	log    logging.Logger
}

// NewNomenclatureGraphRepo builds the repository over a connected driver.
func NewNomenclatureGraphRepo(d driver.DriverInterface, log logging.Logger) NomenclatureGraphRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &nomenclatureGraphRepo{driver: d, log: log}
}

func (r *nomenclatureGraphRepo) EnsureConstraints(ctx context.Context) error {
	statements := []string{
		"CREATE CONSTRAINT chapter_code IF NOT EXISTS FOR (c:Chapter) REQUIRE c.code IS UNIQUE",
		"CREATE CONSTRAINT heading_code IF NOT EXISTS FOR (h:Heading) REQUIRE h.code IS UNIQUE",
		"CREATE CONSTRAINT subheading_code IF NOT EXISTS FOR (s:Subheading) REQUIRE s.code IS UNIQUE",
		"CREATE CONSTRAINT note_id IF NOT EXISTS FOR (n:Note) REQUIRE n.id IS UNIQUE",
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		for _, stmt := range statements {
			if _, err := tx.Run(ctx, stmt, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// UpsertHierarchy merges 6-digit entries and the chapter and heading nodes
// their code prefixes imply. Entries that are not 6 digits are skipped.
func (r *nomenclatureGraphRepo) UpsertHierarchy(ctx context.Context, entries []catalog.Entry) (int64, error) {
	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		code := string(e.Code)
		if len(code) != 6 {
			continue
		}
		rows = append(rows, map[string]interface{}{
			"chapter":    code[:2],
			"heading":    code[:4],
			"subheading": code,
			"title":      e.Title,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	cypher := `
	UNWIND $rows AS row
	MERGE (c:Chapter {code: row.chapter})
	MERGE (h:Heading {code: row.heading})
	MERGE (c)-[:CONTAINS]->(h)
	MERGE (s:Subheading {code: row.subheading})
	SET s.title = row.title
	MERGE (h)-[:CONTAINS]->(s)
	RETURN count(s) AS merged`

	res, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		return driver.ExtractSingleRecord(ctx, result, func(rec *neo4j.Record) (int64, error) {
			return rec.Values[0].(int64), nil
		})
	})
	if err != nil {
		return 0, err
	}

	merged := res.(int64)
	r.log.Info("nomenclature hierarchy merged", logging.Int64("subheadings", merged))
	return merged, nil
}

// AttachNotes merges note nodes and links each to the node its scope names:
// CHAPTER notes to (:Chapter), HEADING notes to (:Heading), SUBHEADING notes
// to (:Subheading). Section notes have no graph anchor and are skipped.
func (r *nomenclatureGraphRepo) AttachNotes(ctx context.Context, notes []catalog.LegalNote) (int64, error) {
	byLabel := map[string][]map[string]interface{}{}
	for _, n := range notes {
		var label string
		switch n.Scope {
		case catalog.ScopeChapter:
			label = "Chapter"
		case catalog.ScopeHeading:
			label = "Heading"
		case catalog.ScopeSubheading:
			label = "Subheading"
		default:
			continue
		}
		byLabel[label] = append(byLabel[label], map[string]interface{}{
			"id":     n.ID,
			"scope":  string(n.Scope),
			"code":   n.ScopeCode,
			"number": n.Number,
			"text":   n.Text,
		})
	}

	var attached int64
	for label, rows := range byLabel {
		cypher := `
		UNWIND $rows AS row
		MATCH (target:` + label + ` {code: row.code})
		MERGE (n:Note {id: row.id})
		SET n.scope = row.scope, n.number = row.number, n.text = row.text
		MERGE (n)-[:APPLIES_TO]->(target)
		RETURN count(n) AS attached`

		res, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
			result, err := tx.Run(ctx, cypher, map[string]any{"rows": rows})
			if err != nil {
				return nil, err
			}
			return driver.ExtractSingleRecord(ctx, result, func(rec *neo4j.Record) (int64, error) {
				return rec.Values[0].(int64), nil
			})
		})
		if err != nil {
			return attached, err
		}
		attached += res.(int64)
	}
	return attached, nil
}

func (r *nomenclatureGraphRepo) PathToRoot(ctx context.Context, code string) ([]PathSegment, error) {
	if len(code) != 6 {
		return nil, errors.InvalidParam("subheading code must be 6 digits")
	}

	cypher := `
	MATCH (c:Chapter)-[:CONTAINS]->(h:Heading)-[:CONTAINS]->(s:Subheading {code: $code})
	RETURN c.code, h.code, s.code, s.title`

	res, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"code": code})
		if err != nil {
			return nil, err
		}
		return driver.ExtractSingleRecord(ctx, result, func(rec *neo4j.Record) ([]PathSegment, error) {
			title, _ := rec.Values[3].(string)
			return []PathSegment{
				{Level: "chapter", Code: rec.Values[0].(string)},
				{Level: "heading", Code: rec.Values[1].(string)},
				{Level: "subheading", Code: rec.Values[2].(string), Title: title},
			}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]PathSegment), nil
}

func (r *nomenclatureGraphRepo) SiblingHeadings(ctx context.Context, heading string) ([]string, error) {
	if len(heading) != 4 {
		return nil, errors.InvalidParam("heading code must be 4 digits")
	}

	cypher := `
	MATCH (c:Chapter)-[:CONTAINS]->(h:Heading {code: $heading})
	MATCH (c)-[:CONTAINS]->(sibling:Heading)
	WHERE sibling.code <> $heading
	RETURN sibling.code
	ORDER BY sibling.code`

	res, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"heading": heading})
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, result, func(rec *neo4j.Record) (string, error) {
			return rec.Values[0].(string), nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

func (r *nomenclatureGraphRepo) NotesInScope(ctx context.Context, code string) ([]catalog.LegalNote, error) {
	if len(code) != 6 {
		return nil, errors.InvalidParam("subheading code must be 6 digits")
	}

	cypher := `
	MATCH (c:Chapter)-[:CONTAINS]->(h:Heading)-[:CONTAINS]->(s:Subheading {code: $code})
	MATCH (n:Note)-[:APPLIES_TO]->(target)
	WHERE target IN [c, h, s]
	RETURN n.id, n.scope, target.code, n.number, n.text
	ORDER BY n.scope, n.number`

	res, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"code": code})
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, result, func(rec *neo4j.Record) (catalog.LegalNote, error) {
			number, _ := rec.Values[3].(int64)
			return catalog.LegalNote{
				ID:        rec.Values[0].(int64),
				Scope:     catalog.NoteScope(rec.Values[1].(string)),
				ScopeCode: rec.Values[2].(string),
				Number:    int(number),
				Text:      rec.Values[4].(string),
			}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]catalog.LegalNote), nil
}

func (r *nomenclatureGraphRepo) Stats(ctx context.Context) (map[string]int64, error) {
	cypher := `
	CALL {
		MATCH (c:Chapter) RETURN 'chapters' AS label, count(c) AS n
		UNION ALL
		MATCH (h:Heading) RETURN 'headings' AS label, count(h) AS n
		UNION ALL
		MATCH (s:Subheading) RETURN 'subheadings' AS label, count(s) AS n
		UNION ALL
		MATCH (x:Note) RETURN 'notes' AS label, count(x) AS n
	}
	RETURN label, n`

	res, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, nil)
		if err != nil {
			return nil, err
		}
		stats := map[string]int64{}
		for result.Next(ctx) {
			rec := result.Record()
			stats[rec.Values[0].(string)] = rec.Values[1].(int64)
		}
		return stats, result.Err()
	})
	if err != nil {
		return nil, err
	}
	return res.(map[string]int64), nil
}

//Personal.AI order the ending
