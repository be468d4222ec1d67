// cmd/folioctl/seed.go
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/folio/internal/app/content"
	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/spf13/cobra"
)

var resetConfirmed bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write default content into empty collections",
	Long: `seed writes the default content into every collection that has no
documents yet, and the default site config if it is missing. Collections
that already hold content are left alone.

The running server seeds the same way on first start; this command lets an
operator do it ahead of time or after dropping a collection.`,
	RunE: runSeed,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the content with the defaults",
	Long: `reset writes the site config and every default entity, replacing
documents with the same id. Documents that are not part of the defaults are
kept. Requires --yes.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "Confirm overwriting the current content")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Batch())
	defer cancel()

	c, err := defaults()
	if err != nil {
		return err
	}
	db, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()

	docs := docstore.NewMongo(db, newLogger(), docstore.MongoOptions{})
	defer docs.Close(context.Background())

	present, err := presentCollections(ctx, docs)
	if err != nil {
		return err
	}
	writes := seedWrites(content.DefaultWrites(c), present)
	if len(writes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "all collections already have content")
		return nil
	}
	if err := docs.Batch(ctx, writes); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents\n", len(writes))
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetConfirmed {
		return errors.New("reset overwrites the site content; pass --yes to confirm")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Batch())
	defer cancel()

	c, err := defaults()
	if err != nil {
		return err
	}
	db, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()

	docs := docstore.NewMongo(db, newLogger(), docstore.MongoOptions{})
	defer docs.Close(context.Background())

	writes := content.DefaultWrites(c)
	if err := docs.Batch(ctx, writes); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "reset %d documents\n", len(writes))
	return nil
}

// presentCollections reports which collections already hold content. For
// the config collection only the site config document counts.
func presentCollections(ctx context.Context, docs *docstore.Mongo) (map[string]bool, error) {
	present := map[string]bool{}
	switch _, err := docs.Get(ctx, models.CollectionConfig, models.SiteConfigDocID); {
	case err == nil:
		present[models.CollectionConfig] = true
	case !errors.Is(err, docstore.ErrNotFound):
		return nil, err
	}
	for _, coll := range entityCollections {
		list, err := docs.List(ctx, coll)
		if err != nil {
			return nil, err
		}
		present[coll] = len(list) > 0
	}
	return present, nil
}

var entityCollections = []string{
	models.CollectionProjects,
	models.CollectionSkills,
	models.CollectionExperiences,
	models.CollectionCertificates,
}

// seedWrites keeps the writes whose collection is not present.
func seedWrites(all []docstore.Write, present map[string]bool) []docstore.Write {
	var out []docstore.Write
	for _, w := range all {
		if !present[w.Collection] {
			out = append(out, w)
		}
	}
	return out
}
