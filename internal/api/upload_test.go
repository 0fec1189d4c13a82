package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func writeWorkbook(t *testing.T, name string, dataRows int) string {
	t.Helper()
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]string{"sku", "name", "quantity"}))
	for i := 0; i < dataRows; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &[]any{"MED001", "Paracetamol 500mg", 10}))
	}

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	return writeTempFile(t, name, buf.Bytes())
}

func TestOpenUploadFile(t *testing.T) {
	t.Run("rejects disallowed extension", func(t *testing.T) {
		path := writeTempFile(t, "inventory.pdf", []byte("%PDF-1.4"))

		_, err := api.OpenUploadFile(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
		assert.Contains(t, err.Error(), "invalid file type")
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		path := writeTempFile(t, "big.csv", bytes.Repeat([]byte("a"), api.MaxUploadSize+1))

		_, err := api.OpenUploadFile(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
		assert.Contains(t, err.Error(), "10MB")
	})

	t.Run("rejects corrupt xlsx", func(t *testing.T) {
		path := writeTempFile(t, "broken.xlsx", []byte("this is not a zip archive"))

		_, err := api.OpenUploadFile(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("accepts csv", func(t *testing.T) {
		path := writeTempFile(t, "inventory.csv", []byte("sku,name\nMED001,Paracetamol\n"))

		f, err := api.OpenUploadFile(path)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "inventory.csv", f.Name)
		assert.Equal(t, -1, f.Rows)
	})

	t.Run("counts xlsx data rows", func(t *testing.T) {
		path := writeWorkbook(t, "inventory.xlsx", 7)

		f, err := api.OpenUploadFile(path)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, 7, f.Rows)
	})
}

func TestUploadFile_RejectionsNeverReachNetwork(t *testing.T) {
	ts := newTestServer(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.UploadResult{})
	})
	defer ts.Close()
	client := newTestClient(ts, "t")

	badType := writeTempFile(t, "inventory.txt", []byte("nope"))
	_, err := client.Inventory.UploadFile(context.Background(), badType, nil)
	require.Error(t, err)

	tooBig := writeTempFile(t, "big.json", bytes.Repeat([]byte("x"), api.MaxUploadSize+1))
	_, err = client.Inventory.UploadFile(context.Background(), tooBig, nil)
	require.Error(t, err)

	assert.Zero(t, ts.requests.Load(), "client-side rejections must not issue HTTP requests")
}

func TestUploadFile_SendsMultipartAndReportsProgress(t *testing.T) {
	ts := newTestServer(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(api.MaxUploadSize))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "inventory.csv", header.Filename)

		json.NewEncoder(w).Encode(api.UploadResult{TotalRows: 1, SuccessCount: 1})
	})
	defer ts.Close()
	client := newTestClient(ts, "t")

	path := writeTempFile(t, "inventory.csv", []byte("sku,name\nMED001,Paracetamol\n"))

	var lastSent, lastTotal int64
	result, err := client.Inventory.UploadFile(context.Background(), path, func(sent, total int64) {
		lastSent, lastTotal = sent, total
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, lastTotal, lastSent, "progress must end at the full payload size")
	assert.Positive(t, lastTotal)
}

func TestUploadFile_ServerErrorPropagatesDetail(t *testing.T) {
	ts := newTestServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Missing required column: sku"})
	})
	defer ts.Close()
	client := newTestClient(ts, "t")

	path := writeTempFile(t, "inventory.csv", []byte("name\nParacetamol\n"))
	_, err := client.Inventory.UploadFile(context.Background(), path, nil)
	require.Error(t, err)
	assert.Equal(t, "Missing required column: sku", errors.Detail(err, ""))
}
