package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestRequest_Marshal(t *testing.T) {
	req, err := NewRequest("eth_call", []interface{}{"param"}, NewIDInt(7))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	data, err := req.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	want := `{"jsonrpc":"2.0","method":"eth_call","params":["param"],"id":7}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestRequest_NoParams(t *testing.T) {
	req, err := NewRequest("eth_blockNumber", nil, NewIDInt(1))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	data, err := req.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(data) != `{"jsonrpc":"2.0","method":"eth_blockNumber","id":1}` {
		t.Errorf("got %s", data)
	}
}

func TestRequest_Validate(t *testing.T) {
	req, _ := NewRequest("eth_call", nil, NewIDInt(1))
	if err := req.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	bad := &Request{JSONRPC: "1.0", Method: "eth_call"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for wrong version")
	}

	bad = &Request{JSONRPC: Version}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for missing method")
	}
}

func TestRequest_Clone(t *testing.T) {
	req, _ := NewRequest("eth_call", []int{1, 2}, NewIDInt(1))
	clone := req.Clone()

	clone.ID = NewIDInt(2)
	clone.Params[0] = 'x'

	if req.ID.Value() != int64(1) {
		t.Error("clone mutated original ID")
	}
	if req.Params[0] == 'x' {
		t.Error("clone shares params buffer with original")
	}
}

func TestID_Kinds(t *testing.T) {
	for _, tt := range []struct {
		id   ID
		want string
	}{
		{NewIDInt(42), "42"},
		{NewIDString("abc"), `"abc"`},
		{NewIDNull(), "null"},
	} {
		data, err := json.Marshal(tt.id)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != tt.want {
			t.Errorf("got %s, want %s", data, tt.want)
		}
	}

	if !NewIDNull().IsNull() {
		t.Error("null ID should report IsNull")
	}
	if NewIDInt(0).IsNull() {
		t.Error("zero ID is not null")
	}
}

func TestParseResponse_Result(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"jsonrpc":"2.0","result":"0xff","id":3}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.HasError() {
		t.Fatal("unexpected error in response")
	}
	if resp.ResultIsNull() {
		t.Fatal("result should not be null")
	}

	var out string
	if err := resp.GetResultAs(&out); err != nil {
		t.Fatalf("GetResultAs: %v", err)
	}
	if out != "0xff" {
		t.Errorf("result = %q", out)
	}
}

func TestParseResponse_Error(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"jsonrpc":"2.0","error":{"code":-32000,"message":"out of gas"},"id":3}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if !resp.HasError() {
		t.Fatal("expected error in response")
	}
	if resp.Error.Code != CodeServerError {
		t.Errorf("code = %d", resp.Error.Code)
	}
	if resp.Error.Error() != "out of gas" {
		t.Errorf("message = %q", resp.Error.Error())
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	if _, err := ParseResponse([]byte(`not json`)); err == nil {
		t.Error("expected parse error")
	}
}

func TestResponse_ResultIsNull(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"jsonrpc":"2.0","result":null,"id":1}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if !resp.ResultIsNull() {
		t.Error("null result not detected")
	}
}
