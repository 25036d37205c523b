package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

// target pairs a legacy glossary route with its counterpart on the Go API.
type target struct {
	Name       string          `json:"name"`
	Method     string          `json:"method"`
	LegacyPath string          `json:"legacy_path"`
	GoPath     string          `json:"go_path"`
	Body       json.RawMessage `json:"body,omitempty"`
	Session    bool            `json:"session"`
	Critical   bool            `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error"`
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

// Diff reports whether the pair disagrees on status or payload.
func (c comparison) Diff() bool {
	return c.Error != nil || !c.StatusMatch || !c.BodyMatch
}

type endpoint struct {
	base  string
	token string
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		goToken     string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:5000", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "Legacy glossary server base URL")
	flag.StringVar(&goToken, "go-token", os.Getenv("GLOSSARY_SESSION_TOKEN"), "Session token sent as Bearer to gated Go routes")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	goSide := endpoint{base: goBase, token: goToken}
	legacySide := endpoint{base: legacyBase}

	comparisons := make([]comparison, 0, len(targets))
	for _, t := range targets {
		comparisons = append(comparisons, compareTarget(client, goSide, legacySide, t))
	}

	printReport(comparisons)

	breaking, optional := countDiffs(comparisons)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	for i, t := range file.Targets {
		if t.LegacyPath == "" || t.GoPath == "" {
			return nil, fmt.Errorf("target %d (%s): legacy_path and go_path are required", i, t.Name)
		}
	}
	return file.Targets, nil
}

func countDiffs(results []comparison) (breaking, optional int) {
	for _, res := range results {
		if !res.Diff() {
			continue
		}
		if res.Target.Critical {
			breaking++
		} else {
			optional++
		}
	}
	return breaking, optional
}

func compareTarget(client *http.Client, goSide, legacySide endpoint, tgt target) comparison {
	comp := comparison{Target: tgt}

	goToken := ""
	if tgt.Session {
		goToken = goSide.token
	}
	goStatus, goBody, goDur, goErr := fetch(client, goSide.base, tgt.GoPath, goToken, tgt)
	legacyStatus, legacyBody, legacyDur, legacyErr := fetch(client, legacySide.base, tgt.LegacyPath, "", tgt)
	comp.DurationGo = goDur
	comp.DurationLegacy = legacyDur

	if goErr != nil {
		comp.Error = fmt.Errorf("go request failed: %w", goErr)
		return comp
	}
	if legacyErr != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", legacyErr)
		return comp
	}

	comp.GoStatus = goStatus
	comp.LegacyStatus = legacyStatus
	comp.StatusMatch = goStatus == legacyStatus

	// Error bodies differ by construction: the legacy server sends a bare message.
	if goStatus >= http.StatusBadRequest && legacyStatus >= http.StatusBadRequest {
		comp.BodyMatch = isGoError(goBody) && isLegacyError(legacyBody)
		return comp
	}

	comp.BodyMatch = bodiesEqual(unwrapData(goBody), legacyBody)
	return comp
}

func fetch(client *http.Client, base, path, token string, tgt target) (int, []byte, time.Duration, error) {
	if client == nil {
		return 0, nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body io.Reader
	if len(tgt.Body) > 0 {
		body = bytes.NewReader(tgt.Body)
	}
	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, body)
	if err != nil {
		return 0, nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, payload, time.Since(start), nil
}

// unwrapData strips the success envelope so payloads line up with the
// legacy server's bare rows. Anything else is returned unchanged.
func unwrapData(body []byte) []byte {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Data) == 0 {
		return body
	}
	return env.Data
}

func isGoError(body []byte) bool {
	var env envelope
	return json.Unmarshal(body, &env) == nil && len(env.Error) > 0 && env.Error[0] == '{'
}

func isLegacyError(body []byte) bool {
	var legacy struct {
		Error string `json:"error"`
	}
	return json.Unmarshal(body, &legacy) == nil && legacy.Error != ""
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

// normalize folds JSON numbers to int64 where lossless and booleans to 0/1,
// since the legacy store returns the inquiz flag as a tinyint.
func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	case bool:
		if val {
			*v = int64(1)
		} else {
			*v = int64(0)
		}
	}
}

func printReport(results []comparison) {
	fmt.Println("Glossary Shadow Compare")
	fmt.Println("=======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if res.Diff() {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Name)
		fmt.Printf("  Legacy: %s -> %d (%s)\n", res.Target.LegacyPath, res.LegacyStatus, res.DurationLegacy)
		fmt.Printf("  Go:     %s -> %d (%s)\n", res.Target.GoPath, res.GoStatus, res.DurationGo)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
