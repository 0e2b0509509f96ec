// Package storage keeps files in S3-compatible object storage.
//
// The CRUD export action archives every generated workbook through it:
//
//	s3, err := storage.New(storage.Config{
//	    Bucket:    "exports",
//	    AccessKey: os.Getenv("S3_ACCESS_KEY"),
//	    SecretKey: os.Getenv("S3_SECRET_KEY"),
//	    Endpoint:  "http://localhost:9000",
//	    PathStyle: true,
//	})
//	res, err := crud.NewResource(store, crud.WithArchiver(s3.Archiver("exports/posts")))
//
// Archived keys are "{prefix}/{yyyy/mm/dd}/{uuid}-{filename}".
package storage
