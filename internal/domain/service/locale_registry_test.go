package service

import (
	"testing"

	"roleplay-tutor-api/internal/domain/entity"
)

func TestLocaleRegistryLookup(t *testing.T) {
	r := NewLocaleRegistry()

	lang, v, ok := r.Lookup("es-MX")
	if !ok {
		t.Fatal("es-MX should resolve")
	}
	if lang.Name != "Spanish" || v.Country != "Mexico" || !v.IsDefault {
		t.Fatalf("unexpected lookup: %+v %+v", lang, v)
	}

	if _, v, ok := r.Lookup("pt_pt"); !ok || v.Code != "pt-PT" {
		t.Fatalf("pt_pt should resolve to pt-PT, got %+v ok=%v", v, ok)
	}

	if _, _, ok := r.Lookup("xx-ZZ"); ok {
		t.Fatal("xx-ZZ should not resolve")
	}
}

func TestLocaleRegistryDefaultLocaleFor(t *testing.T) {
	r := NewLocaleRegistry()

	tests := []struct {
		lang string
		want string
		ok   bool
	}{
		{"fr", "fr-FR", true},
		{"es", "es-MX", true},
		{"pt", "pt-BR", true},
		{"EL", "el-GR", true},
		{"ja", "", false},
	}
	for _, tt := range tests {
		got, ok := r.DefaultLocaleFor(tt.lang)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DefaultLocaleFor(%q) = %q,%v want %q,%v", tt.lang, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLocaleRegistryResolveFallsBackToFrench(t *testing.T) {
	r := NewLocaleRegistry()

	loc, ok := r.Resolve("xx-ZZ")
	if ok {
		t.Fatal("unknown locale should report fallback")
	}
	want := entity.ResolvedLocale{Locale: "fr-FR", LanguageCode: "fr", LanguageName: "French", CountryName: "France"}
	if loc != want {
		t.Fatalf("Resolve(xx-ZZ) = %+v", loc)
	}

	if loc, _ := r.Resolve(""); loc.Locale != "fr-FR" {
		t.Fatalf("empty locale should fall back, got %+v", loc)
	}

	if loc, ok := r.Resolve("de"); !ok || loc.Locale != "de-DE" {
		t.Fatalf("bare language should resolve to default variant, got %+v", loc)
	}
}

func TestLocaleRegistryTableInvariants(t *testing.T) {
	langs := NewLocaleRegistry().Languages()
	if len(langs) != 15 {
		t.Fatalf("expected 15 languages, got %d", len(langs))
	}
	if langs[0].Code != "fr" {
		t.Fatalf("French must be listed first, got %s", langs[0].Code)
	}
	for _, lang := range langs {
		if len(lang.Variants) == 0 || len(lang.Variants) > 6 {
			t.Errorf("%s has %d variants", lang.Code, len(lang.Variants))
		}
		defaults := 0
		for _, v := range lang.Variants {
			if v.IsDefault {
				defaults++
			}
		}
		if defaults != 1 {
			t.Errorf("%s has %d default variants", lang.Code, defaults)
		}
	}
}

func TestLocaleRegistryMarksFirstVariantDefault(t *testing.T) {
	table := []entity.Language{{Code: "xx", Name: "Test", Variants: []entity.LocaleVariant{
		{Code: "xx-AA", Country: "A"},
		{Code: "xx-BB", Country: "B"},
	}}}
	r := newLocaleRegistry(table)

	if got, _ := r.DefaultLocaleFor("xx"); got != "xx-AA" {
		t.Fatalf("default = %q", got)
	}
	if !r.Languages()[0].Variants[0].IsDefault {
		t.Fatal("first variant should be marked default")
	}
	if table[0].Variants[0].IsDefault {
		t.Fatal("input table must not be mutated")
	}
}

func TestLanguagesReturnsCopy(t *testing.T) {
	r := NewLocaleRegistry()
	langs := r.Languages()
	langs[0].Variants[0].Country = "Nowhere"

	if _, v, _ := r.Lookup("fr-FR"); v.Country != "France" {
		t.Fatal("registry mutated through Languages()")
	}
}
