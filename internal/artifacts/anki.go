package artifacts

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lecturalab/slide-worker/internal/domain"
)

// Fixed identifiers so re-imports update the same deck and model
// instead of duplicating them.
const (
	ankiModelID   = 1607392319
	ankiDeckID    = 2059400110
	ankiModelName = "PDF Slide Explainer Model"
	ankiDeckName  = "Lecture Notes"
)

const ankiAnswerFormat = `{{FrontSide}}<hr id="answer">{{Answer}}<br><br><small style="color: #666;">{{Source}}</small>`

const ankiCSS = `
.card {
    font-family: arial;
    font-size: 20px;
    text-align: center;
    color: black;
    background-color: white;
}
`

// fieldSeparator joins note fields inside the flds column.
const fieldSeparator = "\x1f"

const ankiSchema = `
CREATE TABLE col (
    id integer primary key,
    crt integer not null,
    mod integer not null,
    scm integer not null,
    ver integer not null,
    dty integer not null,
    usn integer not null,
    ls integer not null,
    conf text not null,
    models text not null,
    decks text not null,
    dconf text not null,
    tags text not null
);
CREATE TABLE notes (
    id integer primary key,
    guid text not null,
    mid integer not null,
    mod integer not null,
    usn integer not null,
    tags text not null,
    flds text not null,
    sfld integer not null,
    csum integer not null,
    flags integer not null,
    data text not null
);
CREATE TABLE cards (
    id integer primary key,
    nid integer not null,
    did integer not null,
    ord integer not null,
    mod integer not null,
    usn integer not null,
    type integer not null,
    queue integer not null,
    due integer not null,
    ivl integer not null,
    factor integer not null,
    reps integer not null,
    lapses integer not null,
    left integer not null,
    odue integer not null,
    odid integer not null,
    flags integer not null,
    data text not null
);
CREATE TABLE revlog (
    id integer primary key,
    cid integer not null,
    usn integer not null,
    ease integer not null,
    ivl integer not null,
    lastIvl integer not null,
    factor integer not null,
    time integer not null,
    type integer not null
);
CREATE TABLE graves (
    usn integer not null,
    oid integer not null,
    type integer not null
);
CREATE INDEX ix_notes_usn ON notes (usn);
CREATE INDEX ix_cards_usn ON cards (usn);
CREATE INDEX ix_revlog_usn ON revlog (usn);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_cid ON revlog (cid);
CREATE INDEX ix_notes_csum ON notes (csum);
`

type ankiNote struct {
	question string
	answer   string
	source   string
}

// buildAnkiPackage renders the .apkg file: a zip holding the SQLite
// collection plus an empty media manifest. Only successful slides
// contribute notes; an empty collection is still a valid package.
func buildAnkiPackage(explanations []domain.SlideExplanation) ([]byte, error) {
	notes := collectNotes(explanations)

	dbBytes, err := buildCollection(notes)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entry, err := zw.Create("collection.anki2")
	if err != nil {
		return nil, err
	}
	if _, err := entry.Write(dbBytes); err != nil {
		return nil, err
	}

	media, err := zw.Create("media")
	if err != nil {
		return nil, err
	}
	if _, err := media.Write([]byte("{}")); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func collectNotes(explanations []domain.SlideExplanation) []ankiNote {
	var notes []ankiNote
	for _, exp := range explanations {
		if !exp.Success || exp.Explanation == nil {
			continue
		}
		rec := exp.Explanation
		title := rec.Title
		if title == "" {
			title = fmt.Sprintf("Slide %d", exp.SlideNumber)
		}
		for _, card := range rec.Flashcards {
			q := strings.TrimSpace(card.Question)
			a := strings.TrimSpace(card.Answer)
			if q == "" || a == "" {
				continue
			}
			notes = append(notes, ankiNote{
				question: q,
				answer:   a,
				source:   fmt.Sprintf("Slide %d: %s", exp.SlideNumber, title),
			})
		}
	}
	return notes
}

// buildCollection writes the Anki SQLite collection to a temp file and
// returns its bytes. The sqlite driver needs a real file.
func buildCollection(notes []ankiNote) ([]byte, error) {
	tmp, err := os.CreateTemp("", "collection-*.anki2")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	db, err := sql.Open("sqlite3", tmpPath)
	if err != nil {
		return nil, err
	}

	if err := populateCollection(db, notes); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, err
	}

	return os.ReadFile(tmpPath)
}

func populateCollection(db *sql.DB, notes []ankiNote) error {
	if _, err := db.Exec(ankiSchema); err != nil {
		return err
	}

	now := time.Now()
	nowSec := now.Unix()
	nowMs := now.UnixMilli()

	conf, models, decks, dconf, err := collectionJSON(nowSec)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		nowSec, nowMs, nowMs, conf, models, decks, dconf,
	)
	if err != nil {
		return err
	}

	for i, note := range notes {
		noteID := nowMs + int64(i)*2
		cardID := noteID + 1
		flds := strings.Join([]string{note.question, note.answer, note.source}, fieldSeparator)

		_, err = tx.Exec(
			`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
			 VALUES (?, ?, ?, ?, -1, '', ?, ?, ?, 0, '')`,
			noteID, noteGUID(flds), ankiModelID, nowSec, flds, note.question, fieldChecksum(note.question),
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(
			`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor,
			                    reps, lapses, left, odue, odid, flags, data)
			 VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
			cardID, noteID, ankiDeckID, nowSec, i+1,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// collectionJSON builds the col table JSON blobs.
func collectionJSON(nowSec int64) (conf, models, decks, dconf string, err error) {
	confMap := map[string]any{
		"activeDecks":   []int64{1},
		"addToCur":      true,
		"collapseTime":  1200,
		"curDeck":       1,
		"curModel":      strconv.Itoa(ankiModelID),
		"dueCounts":     true,
		"estTimes":      true,
		"newBury":       true,
		"newSpread":     0,
		"nextPos":       1,
		"sortBackwards": false,
		"sortType":      "noteFld",
		"timeLim":       0,
	}

	model := map[string]any{
		"id":    ankiModelID,
		"name":  ankiModelName,
		"type":  0,
		"mod":   nowSec,
		"usn":   -1,
		"sortf": 0,
		"did":   1,
		"tmpls": []map[string]any{
			{
				"name":  "Card 1",
				"ord":   0,
				"qfmt":  "{{Question}}",
				"afmt":  ankiAnswerFormat,
				"bqfmt": "",
				"bafmt": "",
				"did":   nil,
			},
		},
		"flds": []map[string]any{
			modelField("Question", 0),
			modelField("Answer", 1),
			modelField("Source", 2),
		},
		"css":       ankiCSS,
		"latexPre":  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n",
		"latexPost": "\\end{document}",
		"req":       []any{[]any{0, "all", []int{0}}},
	}

	defaultDeck := map[string]any{
		"id": 1, "name": "Default", "desc": "", "mod": nowSec, "usn": -1,
		"collapsed": false, "browserCollapsed": false,
		"newToday": []int{0, 0}, "revToday": []int{0, 0},
		"lrnToday": []int{0, 0}, "timeToday": []int{0, 0},
		"dyn": 0, "extendNew": 0, "extendRev": 0, "conf": 1,
	}
	lectureDeck := map[string]any{
		"id": ankiDeckID, "name": ankiDeckName, "desc": "", "mod": nowSec, "usn": -1,
		"collapsed": false, "browserCollapsed": false,
		"newToday": []int{0, 0}, "revToday": []int{0, 0},
		"lrnToday": []int{0, 0}, "timeToday": []int{0, 0},
		"dyn": 0, "extendNew": 0, "extendRev": 0, "conf": 1,
	}

	dconfMap := map[string]any{
		"1": map[string]any{
			"id": 1, "name": "Default", "mod": 0, "usn": 0,
			"maxTaken": 60, "autoplay": true, "timer": 0, "replayq": true,
			"new": map[string]any{
				"bury": true, "delays": []int{1, 10}, "initialFactor": 2500,
				"ints": []int{1, 4, 7}, "order": 1, "perDay": 20, "separate": true,
			},
			"rev": map[string]any{
				"bury": true, "ease4": 1.3, "fuzz": 0.05, "ivlFct": 1,
				"maxIvl": 36500, "minSpace": 1, "perDay": 100,
			},
			"lapse": map[string]any{
				"delays": []int{10}, "leechAction": 0, "leechFails": 8,
				"minInt": 1, "mult": 0,
			},
			"dyn": false,
		},
	}

	marshal := func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	}

	if conf, err = marshal(confMap); err != nil {
		return
	}
	if models, err = marshal(map[string]any{strconv.Itoa(ankiModelID): model}); err != nil {
		return
	}
	if decks, err = marshal(map[string]any{
		"1": defaultDeck,
		strconv.Itoa(ankiDeckID): lectureDeck,
	}); err != nil {
		return
	}
	dconf, err = marshal(dconfMap)
	return
}

func modelField(name string, ord int) map[string]any {
	return map[string]any{
		"name": name, "ord": ord, "sticky": false, "rtl": false,
		"font": "Liberation Sans", "size": 20, "media": []any{},
	}
}

// noteGUID derives a stable identifier from the note content so
// re-generated decks update existing notes on import.
func noteGUID(flds string) string {
	sum := sha1.Sum([]byte(flds))
	return hex.EncodeToString(sum[:])[:10]
}

// fieldChecksum is the integer value of the first 8 hex digits of the
// SHA1 of the sort field, as Anki computes it.
func fieldChecksum(sfld string) int64 {
	sum := sha1.Sum([]byte(sfld))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v
}
