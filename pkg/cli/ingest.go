package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/utils/logging"
	"github.com/skyelectric/reglens/pkg/utils/safe"
)

// cmdIngest pushes local regulation files into the permanent namespace of a
// running server, one upload per file
func cmdIngest() *cli.Command {
	var serverURL string
	var fileType string

	return &cli.Command{
		Name:      "ingest",
		Usage:     "Load regulation files into the knowledge base of a running server",
		ArgsUsage: "<file> [<file>...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Usage:       "Base URL of the running reglens server",
				Value:       "http://localhost:8080",
				Sources:     cli.EnvVars("REGLENS_SERVER"),
				Destination: &serverURL,
			},
			&cli.StringFlag{
				Name:        "file-type",
				Usage:       "Document type to assign (regulation or customer)",
				Value:       types.DocTypeRegulation.String(),
				Sources:     cli.EnvVars("REGLENS_INGEST_FILE_TYPE"),
				Destination: &fileType,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one file is required")
			}
			if _, err := types.ParseDocType(fileType); err != nil {
				return goerr.Wrap(err, "invalid file-type")
			}

			client := &http.Client{Timeout: 5 * time.Minute}

			var total int
			for _, path := range paths {
				chunks, err := ingestFile(ctx, client, serverURL, fileType, path)
				if err != nil {
					color.Red("FAIL %s: %v", path, err)
					return goerr.Wrap(err, "ingest failed", goerr.V("path", path))
				}
				color.Green("OK   %s: %d chunks", path, chunks)
				total += chunks
			}

			logging.Default().Info("knowledge base ingest completed",
				"files", len(paths),
				"chunks", total,
			)
			return nil
		},
	}
}

func ingestFile(ctx context.Context, client *http.Client, serverURL, fileType, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read file")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to build multipart form")
	}
	if _, err := fw.Write(data); err != nil {
		return 0, goerr.Wrap(err, "failed to write multipart content")
	}
	if err := mw.WriteField("file_type", fileType); err != nil {
		return 0, goerr.Wrap(err, "failed to write file_type field")
	}
	if err := mw.WriteField("namespace", types.NamespacePermanent.String()); err != nil {
		return 0, goerr.Wrap(err, "failed to write namespace field")
	}
	if err := mw.Close(); err != nil {
		return 0, goerr.Wrap(err, "failed to finalize multipart form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/documents", &buf)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "upload request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, goerr.New("server rejected upload",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
		)
	}

	var uploadResp struct {
		ChunkCount int `json:"chunk_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return 0, goerr.Wrap(err, "failed to decode upload response")
	}
	return uploadResp.ChunkCount, nil
}
