package sheet

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/imroc/req/v3"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/log"
)

// Load fetches the workbook bytes from a local path, a file:// URL or an http(s):// URL.
// The whole file is read before decoding starts.
func Load(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return download(ctx, source)
	case strings.HasPrefix(source, "file://") || !strings.Contains(source, "://"):
		path := strings.TrimPrefix(source, "file://")
		//nolint:gosec // G304: path comes from the operator on the command line
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return data, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidOption, "unsupported source prefix %q", source)
	}
}

// download fetches source, retrying transport failures and 5xx answers
func download(ctx context.Context, source string) ([]byte, error) {
	client := req.C().SetTimeout(60 * time.Second)
	var data []byte
	err := downloadRetry.execute(ctx, func() error {
		resp, err := client.R().SetContext(ctx).Get(source)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return temporary{errors.Wrapf(errors.ErrTransportFailure, "download %s: %v", source, err)}
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			data = resp.Bytes()
			return nil
		case resp.StatusCode >= http.StatusInternalServerError:
			log.DebugH2("Download of %s answered %d, retrying", source, resp.StatusCode)
			return temporary{fmt.Errorf("failed to fetch %s: status %d", source, resp.StatusCode)}
		default:
			return fmt.Errorf("failed to fetch %s: status %d", source, resp.StatusCode)
		}
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ReadSource loads source and decodes its first sheet
func ReadSource(ctx context.Context, source string, opts Options) (*Table, error) {
	data, err := Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return ReadTable(ctx, data, opts)
}
