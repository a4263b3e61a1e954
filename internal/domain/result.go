package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Category is a station variable processed by the pipeline. Its value is the
// top-level key in the output artifact.
type Category string

const (
	CategoryTemperature   Category = "temperatura"
	CategoryPrecipitation Category = "precipitacion"
)

// Decimal is a float that always serializes with a fractional part, matching
// the artifact the map front end was built against ("50.0", not "50").
// Magnitudes from 1e16 up and below 1e-4 use exponent form ("1e+16", "1e-05").
type Decimal float64

func (d Decimal) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("unsupported decimal value %v", f)
	}

	e := strconv.FormatFloat(f, 'e', -1, 64)
	if exp, _ := strconv.Atoi(e[strings.LastIndexByte(e, 'e')+1:]); exp < -4 || exp >= 16 {
		return []byte(e), nil
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return []byte(s), nil
}

// Result is the per-locality outcome: either a percentile summary or an
// error message. Err non-empty selects the error form.
type Result struct {
	Percentile   Decimal `json:"percentil"`
	LatestValue  Decimal `json:"valor_actual"`
	LatestPeriod string  `json:"ultimo_mes"`
	SampleSize   int     `json:"datos_historicos_usados"`

	Err string `json:"-"`
}

// ErrorResult builds the error form of a Result.
func ErrorResult(msg string) Result {
	return Result{Err: msg}
}

// Failed reports whether r is the error form.
func (r Result) Failed() bool {
	return r.Err != ""
}

type errorBody struct {
	Error string `json:"error"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return marshalNoEscape(errorBody{Error: r.Err})
	}
	type plain Result
	return marshalNoEscape(plain(r))
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var body struct {
		Percentile   *float64 `json:"percentil"`
		LatestValue  *float64 `json:"valor_actual"`
		LatestPeriod string   `json:"ultimo_mes"`
		SampleSize   int      `json:"datos_historicos_usados"`
		Error        *string  `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	if body.Error != nil {
		*r = ErrorResult(*body.Error)
		return nil
	}
	if body.Percentile == nil || body.LatestValue == nil {
		return errors.New("result has neither a percentile nor an error")
	}
	*r = Result{
		Percentile:   Decimal(*body.Percentile),
		LatestValue:  Decimal(*body.LatestValue),
		LatestPeriod: body.LatestPeriod,
		SampleSize:   body.SampleSize,
	}
	return nil
}

// ResultSet maps locality names to results and keeps insertion order.
// The zero value is ready to use.
type ResultSet struct {
	names   []string
	results map[string]Result
}

// Set stores r under name. Re-setting a name keeps its original position.
func (s *ResultSet) Set(name string, r Result) {
	if s.results == nil {
		s.results = make(map[string]Result)
	}
	if _, ok := s.results[name]; !ok {
		s.names = append(s.names, name)
	}
	s.results[name] = r
}

// Get returns the result stored under name.
func (s ResultSet) Get(name string) (Result, bool) {
	r, ok := s.results[name]
	return r, ok
}

// Names returns locality names in insertion order.
func (s ResultSet) Names() []string {
	return append([]string(nil), s.names...)
}

func (s ResultSet) Len() int {
	return len(s.names)
}

func (s ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(name)
		if err != nil {
			return nil, err
		}
		val, err := s.results[name].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal result %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *ResultSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("result set: expected object, got %v", tok)
	}

	*s = ResultSet{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("result set: expected key, got %v", tok)
		}
		var r Result
		if err := dec.Decode(&r); err != nil {
			return fmt.Errorf("result %q: %w", name, err)
		}
		s.Set(name, r)
	}
	_, err = dec.Token()
	return err
}

// Report is the consolidated artifact for one run.
type Report struct {
	Temperature   ResultSet `json:"temperatura"`
	Precipitation ResultSet `json:"precipitacion"`
}

// Category returns the result set for c.
func (r *Report) Category(c Category) *ResultSet {
	if c == CategoryPrecipitation {
		return &r.Precipitation
	}
	return &r.Temperature
}

// EncodeReport serializes a report with four-space indentation. Non-ASCII and
// HTML characters are written literally.
func EncodeReport(r Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeReport parses an artifact produced by EncodeReport.
func DecodeReport(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
