// Package envconfig fills configuration structs from environment variables.
//
// Fields opt in with an `env:"NAME"` tag and may carry a `default:"..."` tag. Nested
// structs are walked recursively and may add an `envPrefix:"PART_"` to their children.
// A namespace such as "FANTASY11_CLI" is tried from most to least specific, so
// FANTASY11_CLI_API_URL wins over FANTASY11_API_URL.
package envconfig

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	// ErrInvalidTarget is returned when the target is not a pointer to a struct.
	ErrInvalidTarget = errors.New("config target must be a pointer to a struct")

	// ErrVarNotSet is returned when a tagged variable has neither a value nor a default.
	ErrVarNotSet = errors.New("env var not set")

	// ErrUnsupportedType is returned for field kinds the loader cannot parse.
	ErrUnsupportedType = errors.New("unsupported env var type")
)

var durationType = reflect.TypeOf(time.Duration(0))

// LoadDotEnv loads the given .env files (".env" when none are named) into the process
// environment without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}

// Parse populates target from the environment under namespace.
func Parse(target any, namespace string) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}
	return parse(namespace, "", v.Elem())
}

func parse(namespace, prefix string, v reflect.Value) error {
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := v.Field(i)

		if field.Type.Kind() == reflect.Struct && field.Type != durationType {
			if err := parse(namespace, prefix+field.Tag.Get("envPrefix"), fv); err != nil {
				return err
			}
			continue
		}

		if err := parseField(namespace, prefix, field, fv); err != nil {
			return fmt.Errorf("parse field %s: %w", field.Name, err)
		}
	}

	return nil
}

func lookup(namespace, name string) (string, string, bool) {
	parts := strings.Split(namespace, "_")
	for i := len(parts); i > 0; i-- {
		ns := strings.Join(parts[:i], "_")
		key := name
		if ns != "" {
			key = ns + "_" + name
		}
		if value, ok := os.LookupEnv(key); ok {
			return key, value, true
		}
	}
	return name, "", false
}

func parseField(namespace, prefix string, field reflect.StructField, fv reflect.Value) error {
	tag := field.Tag.Get("env")
	if tag == "" {
		return nil
	}

	key, value, ok := lookup(namespace, prefix+tag)
	if !ok {
		def, hasDefault := field.Tag.Lookup("default")
		if !hasDefault {
			return fmt.Errorf("%w: %s", ErrVarNotSet, key)
		}
		value = def
	}

	if field.Type == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch field.Type.Kind() {
	case reflect.String:
		fv.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %w", key, err)
		}
		fv.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		fv.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %w", key, err)
		}
		fv.SetBool(b)
	default:
		return fmt.Errorf("%w: %s (%v)", ErrUnsupportedType, key, field.Type.Kind())
	}

	return nil
}
