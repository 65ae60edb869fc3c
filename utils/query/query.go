package query

import (
	"encoding/json"

	"github.com/provlabs/vault-standard/types"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDef is the definition of a vault QueryServer endpoint to be tested.
// R is the request message type. S is the response message type.
type TestDef[R any, S any] struct {
	// QueryName is the name of the query being tested.
	QueryName string
	// Query is the query function to invoke.
	Query func(ctx sdk.Context, req *R) (*S, error)
	// Msg builds the query message equivalent to req. When Msg and Smart are
	// both set, every test case is also run through the JSON query entry point.
	Msg func(req *R) types.QueryMsg
	// Smart answers a JSON encoded query message with a JSON encoded response.
	Smart func(ctx sdk.Context, msg []byte) ([]byte, error)
	// PostCheck is a function that runs any desired followup assertions to help pinpoint
	// differences between the expected and actual. It's only called if they're not equal and neither are nil.
	PostCheck func(expected, actual *S)
}

// TestCase is a test case for a QueryServer endpoint.
// R is the request message type. S is the response message type.
type TestCase[R any, S any] struct {
	// Name is the name of the test case.
	Name string
	// Setup is a function that does any needed app/state setup.
	// A cached context is used for tests, so this setup will not carry over between test cases.
	Setup func()
	// Req is the request message to provide to the query.
	Req *R
	// ExpectedResp is the expected response from the query
	ExpectedResp *S
	// ExpectedErrSubstrs is the strings that are expected to be in the error returned by the endpoint.
	// If empty, that error is expected to be nil.
	ExpectedErrSubstrs []string
}

type TestSuiter interface {
	Context() sdk.Context
	SetContext(ctx sdk.Context)
	Require() *require.Assertions
	Assert() *assert.Assertions
}

// RunTestCase runs a unit test on a vault QueryServer endpoint.
// A cached context is used so each test case won't affect the others.
// R is the request message type. S is the response message type.
func RunTestCase[R any, S any](s TestSuiter, td TestDef[R, S], tc TestCase[R, S]) {
	origCtx := s.Context()
	defer func() {
		s.SetContext(origCtx)
	}()
	ctx, _ := s.Context().CacheContext()
	s.SetContext(ctx)

	if tc.Setup != nil {
		tc.Setup()
	}

	var resp *S
	var err error
	testFunc := func() {
		resp, err = td.Query(s.Context(), tc.Req)
	}
	s.Require().NotPanics(testFunc, td.QueryName)
	if assertResult(s, td.QueryName, tc, resp, err) && td.PostCheck != nil && tc.ExpectedResp != nil && resp != nil {
		td.PostCheck(tc.ExpectedResp, resp)
	}

	if td.Msg == nil || td.Smart == nil {
		return
	}
	msg, err := json.Marshal(td.Msg(tc.Req))
	s.Require().NoErrorf(err, "%s message", td.QueryName)
	var data []byte
	s.Require().NotPanics(func() {
		data, err = td.Smart(s.Context(), msg)
	}, td.QueryName)
	var smartResp *S
	if err == nil {
		smartResp = new(S)
		s.Require().NoErrorf(json.Unmarshal(data, smartResp), "%s response %s", td.QueryName, data)
	}
	assertResult(s, td.QueryName+" (json)", tc, smartResp, err)
}

// assertResult checks resp and err against tc and reports whether a
// response was expected.
func assertResult[R any, S any](s TestSuiter, name string, tc TestCase[R, S], resp *S, err error) bool {
	if len(tc.ExpectedErrSubstrs) == 0 {
		s.Assert().NoErrorf(err, "%s error", name)
		s.Assert().Equalf(tc.ExpectedResp, resp, "%s response", name)
		return true
	}
	if s.Assert().Errorf(err, "%s error", name) {
		for _, substr := range tc.ExpectedErrSubstrs {
			s.Assert().Containsf(err.Error(), substr, "%s error missing expected substring", name)
		}
	}
	return false
}
