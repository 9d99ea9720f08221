package sqlexec

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// ImportResult is the response of the master-data import endpoint.
type ImportResult struct {
	Data any
}

type importRequest struct {
	Data              []map[string]any `json:"Data"`
	ConfigurationGuid string           `json:"ConfigurationGuid"`
}

// ImportMasterData posts rows to the cost system's import endpoint using the
// import configuration identified by guid.
func (c *Client) ImportMasterData(ctx context.Context, guid string, data []map[string]any) (ImportResult, error) {
	if guid == "" {
		return ImportResult{}, errors.New("import master data: configuration guid is empty")
	}
	body, err := json.Marshal(importRequest{Data: data, ConfigurationGuid: guid})
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "encode import request")
	}

	var out any
	err = c.postJSON(ctx, c.apiBase+"/api/v1/MasterData/Import", body, &out)
	status := "ok"
	if err != nil {
		status = "error"
	}
	importsTotal.WithLabelValues(status).Inc()
	if err != nil {
		c.log.WithError(err).WithField("rows", len(data)).Error("master data import failed")
		return ImportResult{}, errors.Wrap(err, "import master data")
	}

	c.log.WithField("rows", len(data)).Info("master data imported")
	return ImportResult{Data: out}, nil
}
