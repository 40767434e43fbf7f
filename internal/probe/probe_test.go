package probe

import "testing"

func noEnv(string) string { return "" }

func TestClassify_PushAllowed(t *testing.T) {
	d := New(Inputs{WSURL: "wss://realtime.example.com/ws", Getenv: noEnv}).Classify()
	if d.PushDisallowed {
		t.Errorf("push disallowed: %s", d.Reason)
	}
}

func TestClassify_ConfigPin(t *testing.T) {
	d := New(Inputs{ForcePolling: true, WSURL: "wss://realtime.example.com/ws", Getenv: noEnv}).Classify()
	if !d.PushDisallowed {
		t.Error("expected push disallowed")
	}
	if d.Reason == "" {
		t.Error("expected a reason")
	}
}

func TestClassify_EnvVar(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"0", false},
		{"false", false},
		{"junk", false},
		{"", false},
	}

	for _, tc := range cases {
		env := func(key string) string {
			if key == EnvForcePolling {
				return tc.value
			}
			return ""
		}
		d := New(Inputs{WSURL: "wss://realtime.example.com/ws", Getenv: env}).Classify()
		if d.PushDisallowed != tc.want {
			t.Errorf("env=%q: PushDisallowed = %v, want %v", tc.value, d.PushDisallowed, tc.want)
		}
	}
}

func TestClassify_BadURL(t *testing.T) {
	for _, wsURL := range []string{"", "https://example.com/ws", "://broken"} {
		d := New(Inputs{WSURL: wsURL, Getenv: noEnv}).Classify()
		if !d.PushDisallowed {
			t.Errorf("wsURL=%q: expected push disallowed", wsURL)
		}
	}
}

func TestFunc_Adapter(t *testing.T) {
	var c Classifier = Func(func() Decision {
		return Decision{PushDisallowed: true, Reason: "test"}
	})
	if d := c.Classify(); !d.PushDisallowed || d.Reason != "test" {
		t.Errorf("unexpected decision: %+v", d)
	}
}
