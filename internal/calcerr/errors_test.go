package calcerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

func TestValidation_JoinsAllViolations(t *testing.T) {
	err := Validation([]string{"generation_mwh is required", "ef_grid must be non-negative"})
	require.NotNil(t, err)

	assert.Equal(t, "Invalid inputs: generation_mwh is required; ef_grid must be non-negative", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestValidation_NilWhenNoViolations(t *testing.T) {
	assert.Nil(t, Validation(nil))
	assert.Nil(t, Validation([]string{}))
}

func TestViolations_SurviveWrapping(t *testing.T) {
	err := fmt.Errorf("compute CDM_AMS_ID: %w", Validation([]string{"a_b is required"}))
	assert.Equal(t, []string{"a_b is required"}, Violations(err))
	assert.Nil(t, Violations(errors.New("plain")))
}

func TestGRPCStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"validation", Validation([]string{"capacity_mw is required"}), codes.InvalidArgument},
		{"not found", NotFound("methodology", "Unknown methodology: NOPE", []string{"CDM_AMS_ID"}), codes.NotFound},
		{"configuration", Configuration("methodology id must not be empty"), codes.FailedPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(fmt.Errorf("wrapped: %w", tt.err))
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
		})
	}
}

func TestGRPCStatus_ValidationDetails(t *testing.T) {
	err := Validation([]string{"capacity_mw is required", "Reservoir hydro projects require power density > 4 W/m² for eligibility"})
	st := err.GRPCStatus()

	details := st.Details()
	require.Len(t, details, 1)
	br, ok := details[0].(*errdetails.BadRequest)
	require.True(t, ok)
	require.Len(t, br.FieldViolations, 2)
	assert.Equal(t, "capacity_mw", br.FieldViolations[0].Field)
	assert.Equal(t, "", br.FieldViolations[1].Field)
}

func TestGRPCStatus_NotFoundDetails(t *testing.T) {
	err := NotFound("methodology", "Unknown methodology: NOPE", []string{"CDM_AMS_ID", "GS_RE"})
	st := err.GRPCStatus()

	details := st.Details()
	require.Len(t, details, 1)
	info, ok := details[0].(*errdetails.ErrorInfo)
	require.True(t, ok)
	assert.Equal(t, "methodology", info.Metadata["resource"])
	assert.Equal(t, "CDM_AMS_ID,GS_RE", info.Metadata["available"])
}

func TestGRPCStatus_SurvivesWireEncoding(t *testing.T) {
	err := Validation([]string{"ef_grid must be non-negative"})

	b, mErr := proto.Marshal(err.GRPCStatus().Proto())
	require.NoError(t, mErr)

	var decoded spb.Status
	require.NoError(t, proto.Unmarshal(b, &decoded))
	st := status.FromProto(&decoded)

	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, err.Error(), st.Message())
	require.Len(t, st.Details(), 1)
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)
	assert.True(t, proto.Equal(&errdetails.BadRequest_FieldViolation{
		Field:       "ef_grid",
		Description: "ef_grid must be non-negative",
	}, br.FieldViolations[0]))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "configuration", KindConfiguration.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
