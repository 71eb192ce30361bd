// Copyright 2026 The IdlerMeow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tidwall/gjson"

	"github.com/MoonlightPanel/IdlerMeow"
)

const instanceSchema = `
CREATE TABLE IF NOT EXISTS instances (
	port INTEGER PRIMARY KEY,
	startup_command TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL DEFAULT '',
	users TEXT NOT NULL DEFAULT '[]',
	cpu TEXT NOT NULL DEFAULT '',
	ram TEXT NOT NULL DEFAULT '',
	disk TEXT NOT NULL DEFAULT ''
)
`

const upsertInstanceSql = `
INSERT INTO instances (port, startup_command, owner, users, cpu, ram, disk)
VALUES (:port, :startup_command, :owner, :users, :cpu, :ram, :disk)
ON CONFLICT (port)
DO UPDATE SET startup_command = :startup_command, owner = :owner,
	users = :users, cpu = :cpu, ram = :ram, disk = :disk
`

const selectInstanceSql = `
SELECT port, startup_command, owner, users, cpu, ram, disk FROM instances
`

type instanceRow struct {
	Port           int    `db:"port"`
	StartupCommand string `db:"startup_command"`
	Owner          string `db:"owner"`
	Users          string `db:"users"`
	CPU            string `db:"cpu"`
	RAM            string `db:"ram"`
	Disk           string `db:"disk"`
}

func (row *instanceRow) record() *idlermeow.Record {
	rec := &idlermeow.Record{
		Port:           row.Port,
		StartupCommand: row.StartupCommand,
		Owner:          row.Owner,
		Users:          []string{},
		CPU:            row.CPU,
		RAM:            row.RAM,
		Disk:           row.Disk,
	}
	for _, u := range gjson.Parse(row.Users).Array() {
		rec.Users = append(rec.Users, u.String())
	}
	return rec
}

// SQLite keeps records in the instances table of a SQLite database.
type SQLite struct {
	db *sqlx.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec(instanceSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Load(port int) (*idlermeow.Record, error) {
	var row instanceRow
	err := s.db.Get(&row, selectInstanceSql+"WHERE port = ?", port)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: port %d", idlermeow.ErrRecordNotFound, port)
	}
	if err != nil {
		return nil, err
	}
	return row.record(), nil
}

func (s *SQLite) Save(rec *idlermeow.Record) error {
	users := rec.Users
	if users == nil {
		users = []string{}
	}
	b, err := json.Marshal(users)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExec(upsertInstanceSql, &instanceRow{
		Port:           rec.Port,
		StartupCommand: rec.StartupCommand,
		Owner:          rec.Owner,
		Users:          string(b),
		CPU:            rec.CPU,
		RAM:            rec.RAM,
		Disk:           rec.Disk,
	})
	return err
}

func (s *SQLite) List() ([]*idlermeow.Record, error) {
	var rows []instanceRow
	if err := s.db.Select(&rows, selectInstanceSql+"ORDER BY port"); err != nil {
		return nil, err
	}
	recs := make([]*idlermeow.Record, 0, len(rows))
	for i := range rows {
		recs = append(recs, rows[i].record())
	}
	return recs, nil
}

func (s *SQLite) Delete(port int) error {
	res, err := s.db.Exec("DELETE FROM instances WHERE port = ?", port)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: port %d", idlermeow.ErrRecordNotFound, port)
	}
	return nil
}
