package main

import (
	"encoding/json"
	"io"

	"github.com/jonwraymond/genops/cache"
)

type output struct {
	Source    cache.Source    `json:"source"`
	Key       string          `json:"key"`
	CreatedAt int64           `json:"createdAt"`
	Result    json.RawMessage `json:"result"`
}

func newOutput(res cache.Result) output {
	return output{
		Source:    res.Source,
		Key:       res.Key,
		CreatedAt: res.CreatedAt.UnixMilli(),
		Result:    res.Value,
	}
}

func writeResult(w io.Writer, res cache.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newOutput(res))
}
