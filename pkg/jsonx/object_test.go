package jsonx

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDecodeKeepsKeyOrder(t *testing.T) {
	v, err := Decode([]byte(`{"zeta":1,"alpha":{"y":2,"b":3},"mid":[{"q":1,"a":2}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", v)
	}
	if got := obj.Keys(); !reflect.DeepEqual(got, []string{"zeta", "alpha", "mid"}) {
		t.Fatalf("unexpected top-level order %v", got)
	}
	inner, ok := obj.Object("alpha")
	if !ok {
		t.Fatalf("expected nested object")
	}
	if got := inner.Keys(); !reflect.DeepEqual(got, []string{"y", "b"}) {
		t.Fatalf("unexpected nested order %v", got)
	}
	arr, ok := obj.Array("mid")
	if !ok || len(arr) != 1 {
		t.Fatalf("expected one-element array, got %v", arr)
	}
	if got := arr[0].(*Object).Keys(); !reflect.DeepEqual(got, []string{"q", "a"}) {
		t.Fatalf("unexpected order inside array %v", got)
	}
}

func TestDecodeNumbersAndScalars(t *testing.T) {
	v, err := Decode([]byte(`{"n":105.5,"s":"x","b":true,"z":null}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	obj := v.(*Object)
	if n, _ := obj.Get("n"); n != json.Number("105.5") {
		t.Fatalf("expected json.Number, got %#v", n)
	}
	if obj.Text("n") != "105.5" || obj.Text("s") != "x" || obj.Text("b") != "true" {
		t.Fatalf("unexpected text rendering")
	}
	if obj.Text("z") != "" || obj.Text("missing") != "" {
		t.Fatalf("null and missing should render empty")
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	if _, err := Decode([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatalf("expected error for trailing data")
	}
	if _, err := Decode([]byte(`{"a":1,}`)); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestDuplicateKeyKeepsFirstPosition(t *testing.T) {
	v, err := Decode([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	obj := v.(*Object)
	if got := obj.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected keys %v", got)
	}
	if obj.Text("a") != "3" {
		t.Fatalf("expected last value to win, got %s", obj.Text("a"))
	}
}

func TestMarshalRoundTripOrder(t *testing.T) {
	src := `{"z":1,"a":[1,"two",null],"m":{"y":true,"b":"c"}}`
	var obj Object
	if err := json.Unmarshal([]byte(src), &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(&obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != src {
		t.Fatalf("expected %s, got %s", src, out)
	}
}
