/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/recipegram/apiserver/config"
	"github.com/recipegram/apiserver/internal/db"
	"github.com/recipegram/apiserver/internal/services"
	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/types"
	"github.com/spf13/cobra"
)

// loadCmd imports catalog fixtures (JSON) into the database.
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import catalog fixtures",
}

var loadIngredientsCmd = &cobra.Command{
	Use:   "ingredients <file.json>",
	Short: "Import ingredients from a JSON fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoad(cmd.Context(), args[0], loadIngredients)
	},
}

var loadTagsCmd = &cobra.Command{
	Use:   "tags <file.json>",
	Short: "Import tags from a JSON fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoad(cmd.Context(), args[0], loadTags)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.AddCommand(loadIngredientsCmd)
	loadCmd.AddCommand(loadTagsCmd)
}

func runLoad(ctx context.Context, path string, fn func(context.Context, *services.CatalogService, []byte) (int, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}

	cfg := config.LoadConfig()
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		_ = dbConn.Close()
	}()

	catalog := services.NewCatalogService(store.NewCatalogRepository(dbConn))
	imported, err := fn(ctx, catalog, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "imported %d records\n", imported)
	return nil
}

func loadIngredients(ctx context.Context, catalog *services.CatalogService, data []byte) (int, error) {
	var fixtures []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return 0, fmt.Errorf("parse fixture: %w", err)
	}

	imported := 0
	for _, fixture := range fixtures {
		_, err := catalog.CreateIngredient(ctx, fixture.Name, fixture.MeasurementUnit)
		if err != nil {
			// Duplicates in fixtures are skipped, not fatal.
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			return imported, fmt.Errorf("ingredient %q: %w", fixture.Name, err)
		}
		imported++
	}
	return imported, nil
}

func loadTags(ctx context.Context, catalog *services.CatalogService, data []byte) (int, error) {
	var fixtures []struct {
		Name  string  `json:"name"`
		Color *string `json:"color"`
		Slug  string  `json:"slug"`
	}
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return 0, fmt.Errorf("parse fixture: %w", err)
	}

	imported := 0
	for _, fixture := range fixtures {
		_, err := catalog.CreateTag(ctx, types.Tag{
			Name:  fixture.Name,
			Color: fixture.Color,
			Slug:  fixture.Slug,
		})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			return imported, fmt.Errorf("tag %q: %w", fixture.Name, err)
		}
		imported++
	}
	return imported, nil
}
