package db

import (
	"context"
)

type VoucherDownload struct {
	ID            int64
	BookingCode   string
	BookingNumber int64
	Path          string
	Size          int64
	DownloadedAt  int64
}

const createVoucherDownload = `
insert into voucher_downloads(booking_code, booking_number, path, size, downloaded_at)
values (?, ?, ?, ?, ?)
`

type CreateVoucherDownloadParams struct {
	BookingCode   string
	BookingNumber int64
	Path          string
	Size          int64
	DownloadedAt  int64
}

func (q *Queries) CreateVoucherDownload(ctx context.Context, arg CreateVoucherDownloadParams) error {
	_, err := q.db.ExecContext(ctx, createVoucherDownload,
		arg.BookingCode,
		arg.BookingNumber,
		arg.Path,
		arg.Size,
		arg.DownloadedAt,
	)
	return err
}

const listVoucherDownloads = `
select id, booking_code, booking_number, path, size, downloaded_at
from voucher_downloads
order by downloaded_at desc, id desc
limit ?
`

func (q *Queries) ListVoucherDownloads(ctx context.Context, limit int64) ([]VoucherDownload, error) {
	rows, err := q.db.QueryContext(ctx, listVoucherDownloads, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []VoucherDownload
	for rows.Next() {
		var i VoucherDownload
		if err := rows.Scan(
			&i.ID,
			&i.BookingCode,
			&i.BookingNumber,
			&i.Path,
			&i.Size,
			&i.DownloadedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
