package config

import "testing"

func TestOptionsProgrammatic(t *testing.T) {
	o := New().
		Set(SplitLargeMeshesTriangleLimit, 1000000).
		Set(ACSeparateBackfaceCull, true).
		Set(LWOLayer, "Body").
		Set(GenSmoothNormalsMaxSmoothing, 80.0)

	if got := o.Int(SplitLargeMeshesTriangleLimit, -1); got != 1000000 {
		t.Errorf("triangle_limit = %d, want 1000000", got)
	}
	if !o.Bool(ACSeparateBackfaceCull, false) {
		t.Errorf("sepbfcull should be true")
	}
	if got := o.String(LWOLayer, ""); got != "Body" {
		t.Errorf("layer = %q, want Body", got)
	}
	if got := o.Float(GenSmoothNormalsMaxSmoothing, 175); got != 80 {
		t.Errorf("max_smoothing = %v, want 80", got)
	}
	if o.Has("imp.lwo.does_not_exist") {
		t.Errorf("Has should be false for an unset key")
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := New()
	if got := o.Int("missing", 42); got != 42 {
		t.Errorf("missing int default = %d, want 42", got)
	}
	if got := o.Bool("missing", true); got != true {
		t.Errorf("missing bool default = %v, want true", got)
	}
	if got := o.String("missing", "x"); got != "x" {
		t.Errorf("missing string default = %q, want x", got)
	}
}

func TestLoadYAML(t *testing.T) {
	doc := []byte(`
pp.gsn.max_smoothing: 80
pp.tuv.process: 7
imp.lwo.layer: "Body"
imp.ac.sepbfcull: true
`)
	o, err := Load(doc)
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	t.Run("int", func(t *testing.T) {
		if got := o.Int(TransformUVProcess, 0); got != 7 {
			t.Errorf("pp.tuv.process = %d, want 7", got)
		}
	})
	t.Run("float", func(t *testing.T) {
		if got := o.Float(GenSmoothNormalsMaxSmoothing, 175); got != 80 {
			t.Errorf("pp.gsn.max_smoothing = %v, want 80", got)
		}
	})
	t.Run("string", func(t *testing.T) {
		if got := o.String(LWOLayer, ""); got != "Body" {
			t.Errorf("imp.lwo.layer = %q, want Body", got)
		}
	})
	t.Run("bool", func(t *testing.T) {
		if !o.Bool(ACSeparateBackfaceCull, false) {
			t.Errorf("imp.ac.sepbfcull should be true")
		}
	})
}

func TestLoadYAMLInvalid(t *testing.T) {
	if _, err := Load([]byte("not: [valid: yaml")); err == nil {
		t.Errorf("expected an error for malformed YAML")
	}
}
