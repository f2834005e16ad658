package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/models"
)

// loaddata bulk-loads the tag and ingredient reference data from CSV
// files. Each run replaces the previous contents of the loaded table.
//
// ingredients.csv rows: name,measurement_unit
// tags.csv rows:        name,color,slug
func main() {
	ingredientsPath := flag.String("ingredients", "", "path to ingredients CSV file")
	tagsPath := flag.String("tags", "", "path to tags CSV file")
	flag.Parse()

	if *ingredientsPath == "" && *tagsPath == "" {
		log.Fatal("nothing to load: pass -ingredients and/or -tags")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *ingredientsPath != "" {
		n, err := loadIngredients(db, *ingredientsPath)
		if err != nil {
			log.Fatalf("Failed to load ingredients: %v", err)
		}
		log.Printf("Loaded %d ingredients", n)
	}
	if *tagsPath != "" {
		n, err := loadTags(db, *tagsPath)
		if err != nil {
			log.Fatalf("Failed to load tags: %v", err)
		}
		log.Printf("Loaded %d tags", n)
	}
}

func loadIngredients(db *sql.DB, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	// Duplicate (name, unit) pairs in the source file collapse to one row.
	type key struct{ name, unit string }
	seen := make(map[key]struct{}, len(rows))
	loaded := 0

	err = withTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM ingredients"); err != nil {
			return err
		}
		stmt, err := tx.Prepare(pq.CopyIn("ingredients", "id", "name", "measurement_unit"))
		if err != nil {
			return err
		}
		for i, row := range rows {
			if len(row) != 2 {
				return fmt.Errorf("row %d: expected 2 columns, got %d", i+1, len(row))
			}
			k := key{row[0], row[1]}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if _, err := stmt.Exec(uuid.New().String(), row[0], row[1]); err != nil {
				return err
			}
			loaded++
		}
		if _, err := stmt.Exec(); err != nil {
			return err
		}
		return stmt.Close()
	})
	return loaded, err
}

func loadTags(db *sql.DB, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	loaded := 0
	err = withTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM tags"); err != nil {
			return err
		}
		stmt, err := tx.Prepare(pq.CopyIn("tags", "id", "name", "color", "slug"))
		if err != nil {
			return err
		}
		for i, row := range rows {
			if len(row) != 3 {
				return fmt.Errorf("row %d: expected 3 columns, got %d", i+1, len(row))
			}
			if !models.ValidColor(row[1]) {
				return fmt.Errorf("row %d: invalid color %q", i+1, row[1])
			}
			if _, err := stmt.Exec(uuid.New().String(), row[0], row[1], row[2]); err != nil {
				return err
			}
			loaded++
		}
		if _, err := stmt.Exec(); err != nil {
			return err
		}
		return stmt.Close()
	})
	return loaded, err
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("rollback failed: %v", rbErr)
		}
		return err
	}
	return tx.Commit()
}
