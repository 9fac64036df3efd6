package signature

import "testing"

const (
	testURL   = "https://example.com/webhook/sms"
	testToken = "super-secret-token"
)

func testParams() map[string]string {
	return map[string]string{
		"From":       "+12025551234",
		"To":         "+12025559999",
		"Body":       "/question what is my wifi password",
		"MessageSid": "SM123",
	}
}

func TestValidate_AcceptsCorrectSignature(t *testing.T) {
	params := testParams()
	sig := Sign(testURL, params, testToken)

	if !Validate(testURL, params, sig, testToken) {
		t.Fatalf("expected valid signature to be accepted")
	}
}

func TestValidate_RejectsTamperedSignature(t *testing.T) {
	params := testParams()
	sig := Sign(testURL, params, testToken)

	tampered := []byte(sig)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}

	if Validate(testURL, params, string(tampered), testToken) {
		t.Fatalf("expected tampered signature to be rejected")
	}
}

func TestValidate_RejectsTamperedPayloadValue(t *testing.T) {
	params := testParams()
	sig := Sign(testURL, params, testToken)

	params["Body"] = "/question what is my wifi passworD"

	if Validate(testURL, params, sig, testToken) {
		t.Fatalf("expected signature over modified payload to be rejected")
	}
}

func TestValidate_EmptyInputsAlwaysFail(t *testing.T) {
	params := testParams()
	sig := Sign(testURL, params, testToken)

	if Validate("", params, sig, testToken) {
		t.Errorf("expected empty URL to fail validation")
	}
	if Validate(testURL, params, "", testToken) {
		t.Errorf("expected empty signature to fail validation")
	}
	if Validate(testURL, params, sig, "") {
		t.Errorf("expected empty token to fail validation")
	}
}

func TestSign_IndependentOfKeyInsertionOrder(t *testing.T) {
	a := map[string]string{"Alpha": "1", "Beta": "2", "Gamma": "3"}
	b := map[string]string{"Gamma": "3", "Alpha": "1", "Beta": "2"}

	if Sign(testURL, a, testToken) != Sign(testURL, b, testToken) {
		t.Fatalf("expected signature to be independent of map insertion order")
	}
}
