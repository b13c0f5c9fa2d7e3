package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuzzevo/internal/model"
)

func TestRunCodecRoundTrip(t *testing.T) {
	run := newRun("run-7", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	data, err := EncodeRun(run)
	require.NoError(t, err)
	decoded, err := DecodeRun(data)
	require.NoError(t, err)
	assert.Equal(t, run.ID, decoded.ID)
	assert.True(t, decoded.CreatedAt.Equal(run.CreatedAt))
	assert.Equal(t, 20, decoded.Config.Population)
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	run := newRun("run-7", time.Now())
	run.SchemaVersion = CurrentSchemaVersion + 1
	data, err := EncodeRun(run)
	require.NoError(t, err)
	_, err = DecodeRun(data)
	assert.ErrorIs(t, err, ErrVersionMismatch)

	trials := []model.Trial{{VersionedRecord: CurrentVersion()}, {}}
	data, err = EncodeTrials(trials)
	require.NoError(t, err)
	_, err = DecodeTrials(data)
	assert.ErrorIs(t, err, ErrVersionMismatch, "unversioned trial")
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeRun([]byte("{"))
	assert.Error(t, err)
	_, err = DecodeFitnessHistory([]byte(`{"a":1}`))
	assert.Error(t, err)
	_, err = DecodeGenerationDiagnostics([]byte(`[1]`))
	assert.Error(t, err)
}
