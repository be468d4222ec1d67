// cmd/folioctl/export.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/dalemusser/folio/internal/app/system/seeding"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the current content as a seed file",
	Long: `export reads the site config and all four collections and prints them
as YAML in the seed file format. The output can be edited and passed back
with --seed-file or the server's seed_file setting.

Example:
  folioctl export --out backup.yaml`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeouts.Batch())
	defer cancel()

	db, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()

	docs := docstore.NewMongo(db, newLogger(), docstore.MongoOptions{})
	defer docs.Close(context.Background())

	c, err := readContent(ctx, docs)
	if err != nil {
		return err
	}
	raw, err := seeding.Marshal(c)
	if err != nil {
		return err
	}
	if exportOut == "" {
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	}
	if err := os.WriteFile(exportOut, raw, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", exportOut)
	return nil
}

// lister is the read side of *docstore.Mongo.
type lister interface {
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
	List(ctx context.Context, collection string) ([]docstore.Document, error)
}

// readContent loads everything the site shows. A missing site config is
// exported as the empty config.
func readContent(ctx context.Context, docs lister) (seeding.Content, error) {
	c := seeding.Content{SiteConfig: models.EmptySiteConfig()}

	doc, err := docs.Get(ctx, models.CollectionConfig, models.SiteConfigDocID)
	switch {
	case err == nil:
		if err := doc.Decode(&c.SiteConfig); err != nil {
			return c, fmt.Errorf("decode site config: %w", err)
		}
	case !errors.Is(err, docstore.ErrNotFound):
		return c, err
	}

	var errs []error
	c.Projects, err = listAll[models.Project](ctx, docs, models.CollectionProjects)
	errs = append(errs, err)
	c.Skills, err = listAll[models.Skill](ctx, docs, models.CollectionSkills)
	errs = append(errs, err)
	c.Experiences, err = listAll[models.Experience](ctx, docs, models.CollectionExperiences)
	errs = append(errs, err)
	c.Certificates, err = listAll[models.Certificate](ctx, docs, models.CollectionCertificates)
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return c, err
	}

	c.Projects = models.SortProjects(c.Projects)
	c.Certificates = models.SortCertificates(c.Certificates)
	return c, nil
}

func listAll[T any](ctx context.Context, docs lister, collection string) ([]T, error) {
	list, err := docs.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]T, 0, len(list))
	for _, d := range list {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, d.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}
