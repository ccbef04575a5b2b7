package simulation

import (
	"database/sql"

	"wise-brd/model"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

type EventDB struct {
	db *sql.DB
}

// StoredTrial is a trial row with the cell it belongs to
type StoredTrial struct {
	ID        int64
	CellIndex int
	Key       CellKey
	Record    TrialRecord
}

// OpenEventDB opens or creates the trial database at filename
func OpenEventDB(filename string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", filename+"?_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trials (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cell INTEGER NOT NULL,
			k INTEGER NOT NULL,
			w INTEGER NOT NULL,
			strategy TEXT NOT NULL,
			trial INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			infected INTEGER NOT NULL,
			uninfected INTEGER NOT NULL,
			wise INTEGER NOT NULL,
			rounds INTEGER NOT NULL,
			converged BOOLEAN NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create trials table")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS flip_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			trial_id INTEGER NOT NULL,
			agent_id INTEGER NOT NULL,
			step INTEGER NOT NULL,
			from_state INTEGER NOT NULL,
			to_state INTEGER NOT NULL,
			FOREIGN KEY (trial_id) REFERENCES trials(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create flip_events table")
	}

	return &EventDB{db: db}, nil
}

func (edb *EventDB) Close() error {
	return edb.db.Close()
}

// StoreTrial writes a trial and its flip events in one transaction
func (edb *EventDB) StoreTrial(cellIndex int, key CellKey, rec TrialRecord, events []*model.EventRecord) (err error) {
	tx, err := edb.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	result, err := tx.Exec(
		`INSERT INTO trials (cell, k, w, strategy, trial, seed, infected, uninfected, wise, rounds, converged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cellIndex, key.K, key.W, key.Strategy, rec.Trial, rec.Seed,
		rec.Infected, rec.Uninfected, rec.Wise, rec.Rounds, rec.Converged,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert trial")
	}

	trialID, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to get last insert ID")
	}

	if len(events) > 0 {
		stmt, err := tx.Prepare(
			"INSERT INTO flip_events (trial_id, agent_id, step, from_state, to_state) VALUES (?, ?, ?, ?, ?)",
		)
		if err != nil {
			return errors.Wrap(err, "failed to prepare flip event insert")
		}
		defer stmt.Close()

		for _, event := range events {
			body, ok := event.Body.(model.FlipEventBody)
			if event.Type != model.EventFlip || !ok {
				return errors.Newf("unsupported event %q", event.Type)
			}
			if _, err := stmt.Exec(trialID, event.AgentID, event.Step, int(body.From), int(body.To)); err != nil {
				return errors.Wrap(err, "failed to insert flip event")
			}
		}
	}

	return tx.Commit()
}

// DeleteTrialsFromCell removes the trials of cellIndex and every later cell,
// which are the leftovers of an interrupted run
func (edb *EventDB) DeleteTrialsFromCell(cellIndex int) error {
	_, err := edb.db.Exec("DELETE FROM trials WHERE cell >= ?", cellIndex)
	if err != nil {
		return errors.Wrap(err, "failed to delete trials")
	}
	return nil
}

func (edb *EventDB) GetTrials() ([]StoredTrial, error) {
	rows, err := edb.db.Query(`
		SELECT id, cell, k, w, strategy, trial, seed, infected, uninfected, wise, rounds, converged
		FROM trials ORDER BY cell ASC, trial ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query trials")
	}
	defer rows.Close()

	var trials []StoredTrial
	for rows.Next() {
		var t StoredTrial
		err := rows.Scan(
			&t.ID, &t.CellIndex, &t.Key.K, &t.Key.W, &t.Key.Strategy,
			&t.Record.Trial, &t.Record.Seed, &t.Record.Infected, &t.Record.Uninfected,
			&t.Record.Wise, &t.Record.Rounds, &t.Record.Converged,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan trial")
		}
		trials = append(trials, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating trials")
	}
	return trials, nil
}

// GetFlipEvents loads the flip events of one trial ordered by step and agent
func (edb *EventDB) GetFlipEvents(trialID int64) ([]*model.EventRecord, error) {
	rows, err := edb.db.Query(`
		SELECT agent_id, step, from_state, to_state FROM flip_events
		WHERE trial_id = ? ORDER BY step ASC, agent_id ASC
	`, trialID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query flip events")
	}
	defer rows.Close()

	var events []*model.EventRecord
	for rows.Next() {
		var from, to int
		event := &model.EventRecord{Type: model.EventFlip}
		if err := rows.Scan(&event.AgentID, &event.Step, &from, &to); err != nil {
			return nil, errors.Wrap(err, "failed to scan flip event")
		}
		event.Body = model.FlipEventBody{From: model.State(from), To: model.State(to)}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating flip events")
	}
	return events, nil
}
