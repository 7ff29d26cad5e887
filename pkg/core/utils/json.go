package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON defects in model output: missing
// quotes around keys, single quotes, unclosed arrays or objects, trailing
// commas, comments, and surrounding markdown fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON and returns standard JSON. Hjson
// allows comments, unquoted keys and strings, and optional commas, which
// suits hand-written assumption files.
func ParseHJSON(data string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(data), &result); err != nil {
		return "", fmt.Errorf("hjson parse error: %v", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("json marshal error: %v", err)
	}
	return string(out), nil
}

// ParseHJSONToStruct parses Hjson directly into a known schema.
func ParseHJSONToStruct(data string, schema interface{}) error {
	if err := hjson.Unmarshal([]byte(data), schema); err != nil {
		return fmt.Errorf("hjson unmarshal error: %v", err)
	}
	return nil
}

// SmartParse tries multiple strategies to extract valid JSON into schema.
// Order of attempts: strict JSON, JSON repair, then Hjson as the most
// lenient fallback. Returns the normalized JSON that succeeded.
func SmartParse(input string, schema interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	if normalized, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(normalized), schema); err == nil {
			return normalized, nil
		}
	}

	return "", fmt.Errorf("smart parse failed: no strategy produced valid JSON")
}
