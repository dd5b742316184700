package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHistory(t *testing.T, db string) {
	t.Helper()
	mustExecute(t, "create", "--db", db, "--as", "alice", "a1")
	mustExecute(t, "create", "--db", db, "--as", "bob", "b1")
	mustExecute(t, "update", "--db", db, "--as", "alice", "1", "a2")
}

func TestHistory_Text(t *testing.T) {
	db := tempDB(t)
	seedHistory(t, db)

	out := mustExecute(t, "history", "--db", db)
	assert.Equal(t,
		"#1 [created] id=1 owner=alice data=\"a1\"\n"+
			"#2 [created] id=2 owner=bob data=\"b1\"\n"+
			"#3 [updated] id=1 data=\"a2\"\n",
		out)
}

func TestHistory_FromAndKind(t *testing.T) {
	db := tempDB(t)
	seedHistory(t, db)

	out := mustExecute(t, "history", "--db", db, "--from", "2", "--kind", "created")
	assert.Equal(t, "#2 [created] id=2 owner=bob data=\"b1\"\n", out)

	out = mustExecute(t, "history", "--db", db, "--from", "10")
	assert.Equal(t, "No events found.\n", out)

	_, _, err := execute(t, "history", "--db", db, "--kind", "deleted")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistory_Record(t *testing.T) {
	db := tempDB(t)
	seedHistory(t, db)

	out := mustExecute(t, "history", "--db", db, "--record", "1")
	assert.Equal(t,
		"#1 [created] id=1 owner=alice data=\"a1\"\n"+
			"#3 [updated] id=1 data=\"a2\"\n",
		out)

	out = mustExecute(t, "history", "--db", db, "--record", "1", "--kind", "updated")
	assert.Equal(t, "#3 [updated] id=1 data=\"a2\"\n", out)

	out = mustExecute(t, "history", "--db", db, "--record", "9")
	assert.Equal(t, "No events found.\n", out)
}

func TestHistory_JSON(t *testing.T) {
	db := tempDB(t)
	seedHistory(t, db)

	out := mustExecute(t, "history", "--db", db, "--format", "json")

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Seq      int64  `json:"seq"`
			Kind     string `json:"kind"`
			RecordID int64  `json:"record_id"`
			Hash     string `json:"hash"`
			PrevHash string `json:"prev_hash"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "updated", resp.Data[2].Kind)
	assert.Equal(t, resp.Data[1].Hash, resp.Data[2].PrevHash)
}
