package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"voxwave-backend/internal/archive/db"

	_ "modernc.org/sqlite"
)

// Archive writes downloaded vouchers to a directory and records every
// download in a sqlite ledger.
type Archive struct {
	dir string
	db  *sql.DB
	qry *db.Queries
	now func() time.Time
}

// Open creates dir if needed and opens (or creates) the ledger at
// database, relative paths are resolved against dir.
func Open(dir, database string) (*Archive, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	if database == "" {
		database = "vouchers.db"
	}
	if database != ":memory:" && !filepath.IsAbs(database) {
		database = filepath.Join(dir, database)
	}

	sqlite, err := sql.Open("sqlite", database)
	if err != nil {
		return nil, err
	}
	// :memory: databases only live as long as their connection.
	sqlite.SetMaxOpenConns(1)

	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("failed to apply ledger schema: %w", err)
	}

	return &Archive{
		dir: dir,
		db:  sqlite,
		qry: db.New(sqlite),
		now: time.Now,
	}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) path(bookingNumber int) string {
	return filepath.Join(a.dir, fmt.Sprintf("voucher_%d.pdf", bookingNumber))
}

// Save overwrites any earlier copy of the same voucher, the ledger keeps
// one row per download.
func (a *Archive) Save(ctx context.Context, bookingCode string, bookingNumber int, pdf []byte) error {
	path := a.path(bookingNumber)
	err := os.WriteFile(path, pdf, 0644)
	if err != nil {
		return err
	}

	return a.qry.CreateVoucherDownload(ctx, db.CreateVoucherDownloadParams{
		BookingCode:   bookingCode,
		BookingNumber: int64(bookingNumber),
		Path:          path,
		Size:          int64(len(pdf)),
		DownloadedAt:  a.now().Unix(),
	})
}

type Download struct {
	BookingCode   string
	BookingNumber int
	Path          string
	Size          int64
	DownloadedAt  time.Time
}

// List returns the latest downloads, newest first.
func (a *Archive) List(ctx context.Context, limit int) ([]Download, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.qry.ListVoucherDownloads(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	downloads := make([]Download, len(rows))
	for i, r := range rows {
		downloads[i] = Download{
			BookingCode:   r.BookingCode,
			BookingNumber: int(r.BookingNumber),
			Path:          r.Path,
			Size:          r.Size,
			DownloadedAt:  time.Unix(r.DownloadedAt, 0),
		}
	}
	return downloads, nil
}
