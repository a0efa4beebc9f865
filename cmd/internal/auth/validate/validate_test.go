package validate

import (
	"testing"
)

func validRegistration() RegistrationPayload {
	return RegistrationPayload{
		FirstName: "Jane",
		LastName:  "Doe",
		Age:       "30",
		Gender:    "female",
		Email:     "jane@x.com",
		Username:  "janedoe",
		Password:  "Abcdef1!",
	}
}

func TestValidateRegistration_OK(t *testing.T) {
	reg, errs := ValidateRegistration(validRegistration())
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if reg.Age != 30 || reg.Username != "janedoe" || reg.Email != "jane@x.com" {
		t.Fatalf("unexpected normalized payload: %+v", reg)
	}
}

func TestValidateRegistration_Normalization(t *testing.T) {
	raw := validRegistration()
	raw.FirstName = "  Jane "
	raw.Gender = " Female "
	raw.Email = "  JANE@X.COM "
	raw.Username = " JaneDoe "

	reg, errs := ValidateRegistration(raw)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if reg.FirstName != "Jane" {
		t.Fatalf("firstName not trimmed: %q", reg.FirstName)
	}
	if reg.Gender != "female" {
		t.Fatalf("gender not normalized: %q", reg.Gender)
	}
	if reg.Email != "jane@x.com" {
		t.Fatalf("email not normalized: %q", reg.Email)
	}
	if reg.Username != "janedoe" {
		t.Fatalf("username not normalized: %q", reg.Username)
	}
}

func TestValidateRegistration_SingleFieldFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegistrationPayload)
		field  string
	}{
		{"empty first name", func(p *RegistrationPayload) { p.FirstName = "   " }, "firstName"},
		{"empty last name", func(p *RegistrationPayload) { p.LastName = "" }, "lastName"},
		{"missing age", func(p *RegistrationPayload) { p.Age = "" }, "age"},
		{"non-numeric age", func(p *RegistrationPayload) { p.Age = "abc" }, "age"},
		{"zero age", func(p *RegistrationPayload) { p.Age = "0" }, "age"},
		{"negative age", func(p *RegistrationPayload) { p.Age = "-3" }, "age"},
		{"age over cap", func(p *RegistrationPayload) { p.Age = "121" }, "age"},
		{"fractional age", func(p *RegistrationPayload) { p.Age = "30.5" }, "age"},
		{"bad gender", func(p *RegistrationPayload) { p.Gender = "robot" }, "gender"},
		{"empty email", func(p *RegistrationPayload) { p.Email = "" }, "email"},
		{"email no at", func(p *RegistrationPayload) { p.Email = "janex.com" }, "email"},
		{"email no domain dot", func(p *RegistrationPayload) { p.Email = "jane@xcom" }, "email"},
		{"email inner space", func(p *RegistrationPayload) { p.Email = "ja ne@x.com" }, "email"},
		{"short username", func(p *RegistrationPayload) { p.Username = "abc" }, "username"},
		{"username inner space", func(p *RegistrationPayload) { p.Username = "jane doe" }, "username"},
		{"short password", func(p *RegistrationPayload) { p.Password = "Ab1!" }, "password"},
		{"password no lower", func(p *RegistrationPayload) { p.Password = "ABCDEF1!" }, "password"},
		{"password no upper", func(p *RegistrationPayload) { p.Password = "abcdef1!" }, "password"},
		{"password no digit", func(p *RegistrationPayload) { p.Password = "Abcdefg!" }, "password"},
		{"password no symbol", func(p *RegistrationPayload) { p.Password = "Abcdefg1" }, "password"},
		{"password whitespace", func(p *RegistrationPayload) { p.Password = "Abcdef 1!" }, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRegistration()
			tt.mutate(&raw)

			_, errs := ValidateRegistration(raw)
			if len(errs) == 0 {
				t.Fatalf("expected errors")
			}
			found := false
			for _, fe := range errs {
				if fe.Field == tt.field {
					found = true
				} else {
					t.Fatalf("unexpected error for field %q: %v", fe.Field, fe.Message)
				}
			}
			if !found {
				t.Fatalf("expected error for field %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidateRegistration_CollectsAllFailures(t *testing.T) {
	raw := RegistrationPayload{} // everything missing

	_, errs := ValidateRegistration(raw)
	want := []string{"firstName", "lastName", "age", "gender", "email", "username", "password"}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %d: %v", len(want), len(errs), errs)
	}
	for i, field := range want {
		if errs[i].Field != field {
			t.Fatalf("error %d: got field %q want %q (declaration order)", i, errs[i].Field, field)
		}
	}
}

func TestValidateLogin(t *testing.T) {
	login, errs := ValidateLogin(LoginPayload{Username: " JaneDoe ", Password: "whatever"})
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if login.Username != "janedoe" {
		t.Fatalf("username not normalized: %q", login.Username)
	}

	// Login passwords are only checked for presence.
	if _, errs := ValidateLogin(LoginPayload{Username: "janedoe", Password: "x"}); errs != nil {
		t.Fatalf("weak login password must pass boundary validation, got %v", errs)
	}

	_, errs = ValidateLogin(LoginPayload{})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if errs[0].Field != "username" || errs[1].Field != "password" {
		t.Fatalf("unexpected order: %v", errs)
	}
}
