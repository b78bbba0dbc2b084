package tools

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Definition describes a tool the model may invoke: its name, description,
// the JSON schema of its input, and the Go function that implements it.
type Definition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`

	invoke func(ctx context.Context, args []byte) (any, error)
}

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// NewToolFromFunc builds a Definition from a Go function. Supported
// signatures:
//
//	func(Input) (Result, error)
//	func(context.Context, Input) (Result, error)
//	func() (Result, error)
//	func(context.Context) (Result, error)
//
// where Input is a struct whose JSON schema is derived by reflection.
func NewToolFromFunc(name, description string, fn interface{}) (*Definition, error) {
	funcType := reflect.TypeOf(fn)
	if funcType == nil || funcType.Kind() != reflect.Func {
		return nil, errors.New("provided value is not a function")
	}
	if funcType.NumOut() == 0 || funcType.NumOut() > 2 {
		return nil, errors.New("function must return (result) or (result, error)")
	}
	if funcType.NumOut() == 2 && !funcType.Out(1).Implements(errorType) {
		return nil, errors.New("second return value must be an error")
	}

	inputType, wantsContext, err := inspectInputs(funcType)
	if err != nil {
		return nil, err
	}

	schema, err := schemaForInput(inputType)
	if err != nil {
		return nil, errors.Wrap(err, "generate schema")
	}

	funcValue := reflect.ValueOf(fn)
	invoke := func(ctx context.Context, args []byte) (any, error) {
		callArgs := make([]reflect.Value, 0, 2)
		if wantsContext {
			callArgs = append(callArgs, reflect.ValueOf(ctx))
		}
		if inputType != nil {
			input := reflect.New(inputType).Interface()
			if len(args) > 0 {
				if err := json.Unmarshal(args, input); err != nil {
					return nil, errors.Wrap(err, "unmarshal tool arguments")
				}
			}
			callArgs = append(callArgs, reflect.ValueOf(input).Elem())
		}
		return extractResults(funcValue.Call(callArgs))
	}

	return &Definition{
		Name:        name,
		Description: description,
		Parameters:  schema,
		invoke:      invoke,
	}, nil
}

// Invoke runs the tool with the given decoded input object.
func (d *Definition) Invoke(ctx context.Context, input map[string]any) (any, error) {
	if d.invoke == nil {
		return nil, errors.New("tool function not initialized")
	}
	args, err := json.Marshal(input)
	if err != nil {
		return nil, errors.Wrap(err, "marshal tool input")
	}
	return d.invoke(ctx, args)
}

func inspectInputs(funcType reflect.Type) (inputType reflect.Type, wantsContext bool, err error) {
	switch funcType.NumIn() {
	case 0:
		return nil, false, nil
	case 1:
		if funcType.In(0) == contextType {
			return nil, true, nil
		}
		return funcType.In(0), false, nil
	case 2:
		if funcType.In(0) != contextType {
			return nil, false, errors.New("two-arg tool function must be (context.Context, Input)")
		}
		return funcType.In(1), true, nil
	default:
		return nil, false, errors.New("function must take at most (context.Context, Input)")
	}
}

func schemaForInput(inputType reflect.Type) (*jsonschema.Schema, error) {
	if inputType == nil {
		return &jsonschema.Schema{Type: "object"}, nil
	}
	inputInstance := reflect.New(inputType).Elem().Interface()
	reflector := jsonschema.Reflector{
		// Expand definitions inline instead of using $refs
		DoNotReference: true,
	}
	schema := reflector.Reflect(inputInstance)
	if schema.Type == "" && schema.Ref == "" {
		schema.Type = "object"
	}
	return schema, nil
}

func extractResults(results []reflect.Value) (any, error) {
	switch len(results) {
	case 1:
		return results[0].Interface(), nil
	case 2:
		result := results[0].Interface()
		if errValue := results[1].Interface(); errValue != nil {
			return result, errValue.(error)
		}
		return result, nil
	default:
		return nil, errors.Errorf("unexpected number of return values: %d", len(results))
	}
}
