//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type benchRequest struct {
	// PGN is the corpus to benchmark, inline.
	PGN string `json:"pgn"`
	// Games is the size selector: a count or "all" (default "all").
	Games string `json:"games"`
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req benchRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}
	if req.PGN == "" {
		return errResp(400, "missing pgn field")
	}
	if req.Games == "" {
		req.Games = "all"
	}
	take, err := ParseToTake(req.Games)
	if err != nil {
		return errResp(400, err.Error())
	}

	samples, stats, err := ReadSamples(strings.NewReader(req.PGN), take)
	if err != nil {
		if errors.Is(err, ErrNoRecords) {
			return errResp(422, "no well-formed games in pgn")
		}
		return errResp(400, err.Error())
	}

	start := time.Now()
	results, err := RunBench(ctx, samples, AllCodecs())
	if err != nil {
		return errResp(500, fmt.Sprintf("benchmark aborted: %v", err))
	}

	resp := newBenchOutput("", stats, results, time.Since(start))
	respJSON, _ := json.Marshal(resp)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
