package protocol_test

import (
	"encoding/json"
	"testing"

	"survivecraft.ai/internal/protocol"
)

func TestValidator_AcceptsSamples(t *testing.T) {
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	samples := []struct {
		typ string
		raw string
	}{
		{protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0","client_name":"renderer"}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":1,"cmd":{"op":"SELECT","kind":"HUT"}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":2,"cmd":{"op":"GROUND_PICK","pos":[1.5,0,-2]}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":3,"cmd":{"op":"GROUND_PICK"}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":4,"cmd":{"op":"GATHER","kinds":["TREE","ROCK"],"max_distance":2.2}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":5,"cmd":{"op":"MOVE","forward":1,"strafe":-0.5,"yaw":3.14}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":6,"cmd":{"op":"SET_POS","pos":[0,4,0]}}`},
	}
	for _, s := range samples {
		if err := v.Validate(s.typ, []byte(s.raw)); err != nil {
			t.Fatalf("expected %s to validate: %v", s.raw, err)
		}
	}
}

func TestValidator_RejectsBadFrames(t *testing.T) {
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	bad := []struct {
		typ string
		raw string
	}{
		{protocol.TypeHello, `{"type":"HELLO"}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":1,"cmd":{"op":"SELECT"}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":1,"cmd":{"op":"SELECT","kind":"CASTLE"}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":1,"cmd":{"op":"FLY"}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":1,"cmd":{"op":"SET_POS"}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":1,"cmd":{"op":"GROUND_PICK","pos":[1,2]}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":1,"cmd":{"op":"GATHER","max_distance":-1}}`},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","seq":-1,"cmd":{"op":"CANCEL"}}`},
		{protocol.TypeCmd, `not json`},
	}
	for _, s := range bad {
		if err := v.Validate(s.typ, []byte(s.raw)); err == nil {
			t.Fatalf("expected %s to be rejected", s.raw)
		}
	}
	if err := v.Validate("OBS", []byte(`{}`)); err == nil {
		t.Fatalf("expected unknown type to be rejected")
	}
}

func TestValidator_StateRoundTrip(t *testing.T) {
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	pos := [3]float64{1, 2, 3}
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            12,
		Ledger:          protocol.LedgerView{Wood: 3},
		Placement:       protocol.PlacementView{Phase: "GHOSTED", Kind: "HUT", Pos: &pos},
		Player:          protocol.PlayerView{Pos: pos, Hunger: 99.5, Thirst: 98},
		Clock:           protocol.ClockView{Day: 1, TimeOfDay: 0.3},
		Events: []protocol.Event{
			{"type": protocol.EventReject, "code": protocol.ErrNoResource, "message": "Not enough resources"},
		},
	}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := v.Validate(protocol.TypeState, b); err != nil {
		t.Fatalf("state should validate: %v\n%s", err, b)
	}
}

func TestDecodeBase(t *testing.T) {
	base, err := protocol.DecodeBase([]byte(`{"type":"CMD","protocol_version":"1.0","seq":1}`))
	if err != nil || base.Type != protocol.TypeCmd || base.ProtocolVersion != protocol.Version {
		t.Fatalf("DecodeBase: %+v %v", base, err)
	}
}
