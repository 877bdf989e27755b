package fq4

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// Asset is a record of one decoded game file.
type Asset struct {
	ID   int64
	Path string
	Kind Kind
	CRC  string
	Size int64
	// Detail holds the number of items decoded or the reason decoding failed
	Detail string
}

// EntryRecord is a record of one entry extracted from a bank.
type EntryRecord struct {
	Index  int
	Offset int
	Size   int
	CRC    string
}

// Catalog records every extracted asset in an SQLite database.
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens or creates the catalog database in file.
func NewCatalog(file string) (*Catalog, error) {
	// The path is escaped so that any ? or # in it isn't taken as the start
	// of the query string or fragment
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", (&url.URL{Path: file}).EscapedPath())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite only allows a single writer
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS asset (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, kind TEXT NOT NULL, crc TEXT NOT NULL, size INTEGER NOT NULL, detail TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS entry (asset_id INTEGER NOT NULL, idx INTEGER NOT NULL, start INTEGER NOT NULL, size INTEGER NOT NULL, crc TEXT NOT NULL, PRIMARY KEY(asset_id, idx), FOREIGN KEY(asset_id) REFERENCES asset(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// AddAsset records the asset, replacing any previous record for the same
// path along with its entries, and returns its ID.
func (c *Catalog) AddAsset(a Asset) (int64, error) {
	var id int64
	switch err := c.db.QueryRow("SELECT id FROM asset WHERE path = ?", a.Path).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := c.db.Exec("INSERT INTO asset (path, kind, crc, size, detail) VALUES (?, ?, ?, ?, ?)", a.Path, a.Kind.String(), a.CRC, a.Size, a.Detail)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		if _, err := c.db.Exec("UPDATE asset SET kind = ?, crc = ?, size = ?, detail = ? WHERE id = ?", a.Kind.String(), a.CRC, a.Size, a.Detail, id); err != nil {
			return 0, err
		}
		if _, err := c.db.Exec("DELETE FROM entry WHERE asset_id = ?", id); err != nil {
			return 0, err
		}
		return id, nil
	default:
		return 0, err
	}
}

// AddEntry records a bank entry against the asset.
func (c *Catalog) AddEntry(asset int64, e EntryRecord) error {
	if _, err := c.db.Exec("INSERT OR REPLACE INTO entry (asset_id, idx, start, size, crc) VALUES (?, ?, ?, ?, ?)", asset, e.Index, e.Offset, e.Size, e.CRC); err != nil {
		return err
	}
	return nil
}

// Assets returns every asset of the given kind, ordered by path.
func (c *Catalog) Assets(kind Kind) ([]Asset, error) {
	rows, err := c.db.Query("SELECT id, path, crc, size, detail FROM asset WHERE kind = ? ORDER BY path", kind.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		a := Asset{Kind: kind}
		if err := rows.Scan(&a.ID, &a.Path, &a.CRC, &a.Size, &a.Detail); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}

	return assets, rows.Err()
}

// Entries returns every entry recorded against the asset, in index order.
func (c *Catalog) Entries(asset int64) ([]EntryRecord, error) {
	rows, err := c.db.Query("SELECT idx, start, size, crc FROM entry WHERE asset_id = ? ORDER BY idx", asset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []EntryRecord
	for rows.Next() {
		var e EntryRecord
		if err := rows.Scan(&e.Index, &e.Offset, &e.Size, &e.CRC); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
