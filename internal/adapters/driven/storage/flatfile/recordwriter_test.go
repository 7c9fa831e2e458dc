package flatfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// setupTestWriter creates a record writer over a temporary directory.
func setupTestWriter(t *testing.T, batchSize int) (*RecordWriter, string, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "forgemine-test-*")
	require.NoError(t, err)

	writer, err := NewRecordWriter(tempDir, batchSize)
	require.NoError(t, err)
	require.NotNil(t, writer)

	cleanup := func() {
		assert.NoError(t, writer.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}
	return writer, tempDir, cleanup
}

// readRows parses a collection's file back into rows, header included.
func readRows(t *testing.T, dir string, collection domain.Collection) [][]string {
	t.Helper()

	file, err := os.Open(filepath.Join(dir, collection.Filename()))
	require.NoError(t, err)
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	return rows
}

func testIssue(n int) domain.Issue {
	return domain.Issue{
		ID:     fmt.Sprintf("I_%d", n),
		Number: n,
		Title:  fmt.Sprintf("issue %d", n),
		State:  "OPEN",
	}
}

func TestNewRecordWriter_ErrorHandling(t *testing.T) {
	// Invalid path should fail to create the directory
	_, err := NewRecordWriter("/invalid\x00path", 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating output directory")
}

func TestNewRecordWriter_DirectoryCreation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "forgemine-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	nestedDir := filepath.Join(tempDir, "nested", "data")
	writer, err := NewRecordWriter(nestedDir, 0)
	require.NoError(t, err)
	defer writer.Close()

	assert.DirExists(t, nestedDir)
}

func TestRecordWriter_Append_WritesHeaderAndRows(t *testing.T) {
	writer, dir, cleanup := setupTestWriter(t, 0)
	defer cleanup()
	ctx := context.Background()

	accepted, err := writer.Append(ctx, domain.CollectionIssues, []domain.Record{
		testIssue(1), testIssue(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, accepted)
	require.NoError(t, writer.Flush(ctx, domain.CollectionIssues))

	rows := readRows(t, dir, domain.CollectionIssues)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.CollectionIssues.Header(), rows[0])
	assert.Equal(t, "I_1", rows[1][0])
	assert.Equal(t, "I_2", rows[2][0])
}

func TestRecordWriter_Append_HeaderOnlyOnce(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "forgemine-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)
	ctx := context.Background()

	// First writer session.
	writer, err := NewRecordWriter(tempDir, 0)
	require.NoError(t, err)
	_, err = writer.Append(ctx, domain.CollectionIssues, []domain.Record{testIssue(1), testIssue(2)})
	require.NoError(t, err)
	require.NoError(t, writer.Flush(ctx, domain.CollectionIssues))
	require.NoError(t, writer.Close())

	// Second session appends to the same file.
	writer2, err := NewRecordWriter(tempDir, 0)
	require.NoError(t, err)
	_, err = writer2.Append(ctx, domain.CollectionIssues, []domain.Record{testIssue(3)})
	require.NoError(t, err)
	require.NoError(t, writer2.Flush(ctx, domain.CollectionIssues))
	require.NoError(t, writer2.Close())

	rows := readRows(t, tempDir, domain.CollectionIssues)
	require.Len(t, rows, 4, "one header and three data rows")
	assert.Equal(t, domain.CollectionIssues.Header(), rows[0])
	for i, row := range rows[1:] {
		assert.NotEqual(t, "id", row[0], "row %d repeats the header", i+1)
	}
}

func TestRecordWriter_Append_SkipsMalformed(t *testing.T) {
	writer, dir, cleanup := setupTestWriter(t, 0)
	defer cleanup()
	ctx := context.Background()

	accepted, err := writer.Append(ctx, domain.CollectionIssues, []domain.Record{
		testIssue(1),
		domain.Issue{Number: 2, Title: "missing id"},
		testIssue(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, accepted)
	require.NoError(t, writer.Flush(ctx, domain.CollectionIssues))

	rows := readRows(t, dir, domain.CollectionIssues)
	require.Len(t, rows, 3)
	assert.Equal(t, "I_1", rows[1][0])
	assert.Equal(t, "I_3", rows[2][0])
}

func TestRecordWriter_Append_QuotedBodiesSurvive(t *testing.T) {
	writer, dir, cleanup := setupTestWriter(t, 0)
	defer cleanup()
	ctx := context.Background()

	body := "line one\nline two, with a comma and a \"quote\""
	issue := testIssue(1)
	issue.Body = body

	_, err := writer.Append(ctx, domain.CollectionIssues, []domain.Record{issue})
	require.NoError(t, err)
	require.NoError(t, writer.Flush(ctx, domain.CollectionIssues))

	rows := readRows(t, dir, domain.CollectionIssues)
	require.Len(t, rows, 2)
	assert.Equal(t, body, rows[1][3], "the body must round-trip through quoting")
}

func TestRecordWriter_Append_AutoFlushAtBatchSize(t *testing.T) {
	writer, dir, cleanup := setupTestWriter(t, 2)
	defer cleanup()
	ctx := context.Background()

	_, err := writer.Append(ctx, domain.CollectionIssues, []domain.Record{
		testIssue(1), testIssue(2), testIssue(3),
	})
	require.NoError(t, err)

	// The batch boundary flushed the first two rows; the third is
	// still buffered.
	rows := readRows(t, dir, domain.CollectionIssues)
	assert.Len(t, rows, 3)

	require.NoError(t, writer.Flush(ctx, domain.CollectionIssues))
	rows = readRows(t, dir, domain.CollectionIssues)
	assert.Len(t, rows, 4)
}

func TestRecordWriter_Flush_NothingAppended(t *testing.T) {
	writer, dir, cleanup := setupTestWriter(t, 0)
	defer cleanup()

	err := writer.Flush(context.Background(), domain.CollectionReviews)
	assert.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, domain.CollectionReviews.Filename()))
}

func TestRecordWriter_Close_RejectsFurtherUse(t *testing.T) {
	writer, _, cleanup := setupTestWriter(t, 0)
	defer cleanup()
	ctx := context.Background()

	_, err := writer.Append(ctx, domain.CollectionIssues, []domain.Record{testIssue(1)})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	_, err = writer.Append(ctx, domain.CollectionIssues, []domain.Record{testIssue(2)})
	assert.ErrorIs(t, err, domain.ErrWriterClosed)

	err = writer.Flush(ctx, domain.CollectionIssues)
	assert.ErrorIs(t, err, domain.ErrWriterClosed)

	assert.NoError(t, writer.Close(), "closing twice is harmless")
}

func TestRecordWriter_Close_FlushesBufferedRows(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "forgemine-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	writer, err := NewRecordWriter(tempDir, 0)
	require.NoError(t, err)
	_, err = writer.Append(context.Background(), domain.CollectionIssues, []domain.Record{testIssue(1)})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rows := readRows(t, tempDir, domain.CollectionIssues)
	assert.Len(t, rows, 2)
}

func TestRecordWriter_SeparateFilesPerCollection(t *testing.T) {
	writer, dir, cleanup := setupTestWriter(t, 0)
	defer cleanup()
	ctx := context.Background()

	_, err := writer.Append(ctx, domain.CollectionIssues, []domain.Record{testIssue(1)})
	require.NoError(t, err)
	_, err = writer.Append(ctx, domain.CollectionComments, []domain.Record{
		domain.Comment{ID: "C_1", IssueNumber: 1},
	})
	require.NoError(t, err)
	require.NoError(t, writer.Flush(ctx, domain.CollectionIssues))
	require.NoError(t, writer.Flush(ctx, domain.CollectionComments))

	assert.FileExists(t, filepath.Join(dir, "issues.csv"))
	assert.FileExists(t, filepath.Join(dir, "comments.csv"))

	comments := readRows(t, dir, domain.CollectionComments)
	require.Len(t, comments, 2)
	assert.Equal(t, domain.CollectionComments.Header(), comments[0])
}

func TestRecordWriter_Path(t *testing.T) {
	writer, dir, cleanup := setupTestWriter(t, 0)
	defer cleanup()

	assert.Equal(t, filepath.Join(dir, "issues.csv"), writer.Path(domain.CollectionIssues))
}

func TestCountRecords_MissingFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "forgemine-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	count, err := CountRecords(tempDir, domain.CollectionIssues)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCountRecords_CountsDataRows(t *testing.T) {
	writer, dir, cleanup := setupTestWriter(t, 0)
	defer cleanup()
	ctx := context.Background()

	multiline := testIssue(3)
	multiline.Body = "first line\nsecond line"

	_, err := writer.Append(ctx, domain.CollectionIssues, []domain.Record{
		testIssue(1), testIssue(2), multiline,
	})
	require.NoError(t, err)
	require.NoError(t, writer.Flush(ctx, domain.CollectionIssues))

	count, err := CountRecords(dir, domain.CollectionIssues)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "quoted newlines must not inflate the count")
}
