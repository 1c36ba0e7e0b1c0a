package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

// Field aliases accepted in JSON input, English and Italian.
var (
	assignmentKeys = []string{"agenda", "assignments", "compiti", "homework"}
	gradeKeys      = []string{"grades", "voti"}
	lessonKeys     = []string{"lessons", "lezioni"}
	subjectAliases = []string{"subject", "materia"}
	dateAliases    = []string{"date", "data"}
	descAliases    = []string{"description", "descrizione", "text", "testo"}
	topicsAliases  = []string{"topics", "argomenti"}
	gradeAliases   = []string{"grade", "voto"}
	typeAliases    = []string{"type", "tipo"}
	teacherAliases = []string{"teacher", "docente"}
)

// parseJSON accepts either an object with assignment/grade/lesson arrays
// or a bare array of records.
func parseJSON(input string) RawOutcome {
	var out RawOutcome

	var doc any
	if err := json.Unmarshal([]byte(strings.TrimSpace(input)), &doc); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("invalid JSON: %v", err))
		return out
	}

	switch v := doc.(type) {
	case []any:
		for i, el := range v {
			m, ok := el.(map[string]any)
			if !ok {
				out.Warnings = append(out.Warnings, fmt.Sprintf("json element %d: not an object", i))
				continue
			}
			if field(m, gradeAliases...) != "" {
				out.Records = append(out.Records, jsonGrade(m))
			} else {
				out.Records = append(out.Records, jsonAssignment(m))
			}
		}

	case map[string]any:
		found := false
		for _, key := range assignmentKeys {
			items, ok := v[key]
			if !ok {
				continue
			}
			found = true
			out.collect(key, items, jsonAssignment)
		}
		for _, key := range gradeKeys {
			items, ok := v[key]
			if !ok {
				continue
			}
			found = true
			out.collect(key, items, jsonGrade)
		}
		for _, key := range lessonKeys {
			items, ok := v[key]
			if !ok {
				continue
			}
			found = true
			out.collect(key, items, jsonLesson)
		}
		if !found {
			out.Warnings = append(out.Warnings, "json: no agenda, grades or lessons found")
		}

	default:
		out.Warnings = append(out.Warnings, "json: expected an object or an array")
	}

	return out
}

func (o *RawOutcome) collect(key string, items any, build func(map[string]any) models.RawRecord) {
	arr, ok := items.([]any)
	if !ok {
		o.Warnings = append(o.Warnings, fmt.Sprintf("json %q: expected an array", key))
		return
	}
	for i, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			o.Warnings = append(o.Warnings, fmt.Sprintf("json %s[%d]: not an object", key, i))
			continue
		}
		o.Records = append(o.Records, build(m))
	}
}

func jsonAssignment(m map[string]any) models.RawRecord {
	rec := models.RawRecord{
		Date:        field(m, dateAliases...),
		Subject:     field(m, subjectAliases...),
		Description: field(m, descAliases...),
		Extra:       map[string]string{},
	}
	if t := field(m, typeAliases...); t != "" {
		rec.Extra[models.ExtraType] = t
	}
	if topics := listField(m, topicsAliases...); len(topics) > 0 {
		rec.Extra[models.ExtraTopics] = strings.Join(topics, ";")
	}
	return rec
}

func jsonGrade(m map[string]any) models.RawRecord {
	return models.RawRecord{
		Date:        field(m, dateAliases...),
		Subject:     field(m, subjectAliases...),
		Kind:        models.KindGrade,
		Description: field(m, descAliases...),
		Extra: map[string]string{
			models.ExtraGrade: field(m, gradeAliases...),
			models.ExtraType:  field(m, typeAliases...),
		},
	}
}

func jsonLesson(m map[string]any) models.RawRecord {
	return models.RawRecord{
		Date:        field(m, dateAliases...),
		Subject:     field(m, subjectAliases...),
		Kind:        models.KindLesson,
		Description: field(m, descAliases...),
		Extra:       map[string]string{models.ExtraTeacher: field(m, teacherAliases...)},
	}
}

// field returns the first alias present as a string; numbers are formatted
// so that {"voto": 7} reads as "7".
func field(m map[string]any, aliases ...string) string {
	for _, a := range aliases {
		v, ok := m[a]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t)
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return ""
}

func listField(m map[string]any, aliases ...string) []string {
	for _, a := range aliases {
		v, ok := m[a]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case []any:
			var out []string
			for _, el := range t {
				if s, ok := el.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			return out
		case string:
			return []string{t}
		}
	}
	return nil
}
