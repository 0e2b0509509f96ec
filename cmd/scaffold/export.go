package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/scaffold/pkg/excel"
	"github.com/dmitrymomot/scaffold/pkg/record"
	"github.com/dmitrymomot/scaffold/pkg/storage"
)

func newExportCmd(o *rootOptions) *cobra.Command {
	var (
		out     string
		archive bool
		prefix  string
	)

	s3 := &o.S3

	cmd := &cobra.Command{
		Use:   "export <collection>",
		Short: "Export a collection to an xlsx workbook",
		Long: `export writes every record of a collection to an xlsx workbook. Columns are
the collection's fields, or every top level key when none are configured.
With --archive the workbook is uploaded to S3 (S3_* variables) instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := o.newLogger()

			cfg, err := loadConfig(o.ConfigPath)
			if err != nil {
				return err
			}
			c, err := cfg.collection(args[0])
			if err != nil {
				return err
			}
			pool, err := o.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			stores, err := cfg.stores(pool, log)
			if err != nil {
				return err
			}
			body, err := exportWorkbook(ctx, stores[c.Name], c.Fields)
			if err != nil {
				return err
			}

			filename := fmt.Sprintf("%s_%s.xlsx", c.Name, time.Now().UTC().Format("20060102_150405"))
			if archive {
				st, err := storage.New(*s3)
				if err != nil {
					return err
				}
				if err := st.Archiver(prefix)(ctx, filename, excel.ContentType, body); err != nil {
					return err
				}
				log.InfoContext(ctx, "export archived", "collection", c.Name, "filename", filename)
				return nil
			}

			if out == "" {
				out = filename
			}
			return os.WriteFile(out, body, 0o644)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "", "output file, defaults to <collection>_<timestamp>.xlsx")
	f.BoolVar(&archive, "archive", false, "upload to S3 instead of writing a file")
	f.StringVar(&prefix, "prefix", "exports", "S3 key prefix")
	f.StringVar(&s3.Bucket, "s3-bucket", s3.Bucket, "S3 bucket")
	f.StringVar(&s3.AccessKey, "s3-access-key", s3.AccessKey, "S3 access key")
	f.StringVar(&s3.SecretKey, "s3-secret-key", s3.SecretKey, "S3 secret key")
	f.StringVar(&s3.Endpoint, "s3-endpoint", s3.Endpoint, "S3 compatible endpoint")
	f.StringVar(&s3.Region, "s3-region", s3.Region, "S3 region")
	f.BoolVar(&s3.PathStyle, "s3-path-style", s3.PathStyle, "use path style addressing")
	return cmd
}

// exportWorkbook streams store into an xlsx workbook.
func exportWorkbook(ctx context.Context, store record.Store, fields []string) ([]byte, error) {
	var records []record.Record
	for r, err := range store.Stream(ctx, nil) {
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if len(fields) == 0 {
		fields = topLevelKeys(records)
	}

	var buf bytes.Buffer
	if err := excel.Write(&buf, excel.DefaultSheet, excel.Columns(fields...), records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// topLevelKeys returns the id first, then every other key sorted.
func topLevelKeys(records []record.Record) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range records {
		for k := range r {
			if !seen[k] && k != record.FieldID {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	return append([]string{record.FieldID}, keys...)
}
