package workflow_test

import (
	"testing"

	"backend/internal/model"
	"backend/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRouting(t *testing.T) {
	tests := []struct {
		current string
		garment string
		want    string
		ok      bool
	}{
		{model.StatusPending, model.GarmentShirt, model.StatusMeasurement, true},
		{model.StatusMeasurement, model.GarmentShirt, model.StatusCutting, true},
		{model.StatusCutting, model.GarmentShirt, model.StatusStitching, true},
		{model.StatusStitching, model.GarmentShirt, model.StatusKajButton, true},
		{model.StatusKajButton, model.GarmentShirt, model.StatusFinishing, true},
		{model.StatusFinishing, model.GarmentShirt, model.StatusReady, true},
		{model.StatusReady, model.GarmentShirt, model.StatusDelivered, true},
		{model.StatusDelivered, model.GarmentShirt, "", false},

		// Lower-body garments skip the buttonhole stage entirely.
		{model.StatusStitching, model.GarmentPant, model.StatusFinishing, true},
		{model.StatusStitching, model.GarmentPyjama, model.StatusFinishing, true},
		{model.StatusStitching, model.GarmentTrousers, model.StatusFinishing, true},
		{model.StatusStitching, model.GarmentCoat, model.StatusKajButton, true},
	}
	for _, tt := range tests {
		got, ok := workflow.Next(tt.current, tt.garment)
		assert.Equal(t, tt.ok, ok, "%s/%s", tt.current, tt.garment)
		assert.Equal(t, tt.want, got, "%s/%s", tt.current, tt.garment)
	}
}

func TestNextNeverDecreasesRank(t *testing.T) {
	for _, garment := range []string{model.GarmentShirt, model.GarmentPant, model.GarmentCoat} {
		current := model.StatusPending
		for {
			next, ok := workflow.Next(current, garment)
			if !ok {
				break
			}
			require.Greater(t, workflow.Rank(next), workflow.Rank(current),
				"garment %s: %s -> %s", garment, current, next)
			current = next
		}
		require.Equal(t, model.StatusDelivered, current)
	}
}

func TestAllowed(t *testing.T) {
	// Measurement owns both exits out of PENDING and MEASUREMENT.
	assert.True(t, workflow.Allowed(model.RoleMeasurement, model.StatusPending))
	assert.True(t, workflow.Allowed(model.RoleMeasurement, model.StatusMeasurement))
	assert.False(t, workflow.Allowed(model.RoleMeasurement, model.StatusCutting))

	assert.True(t, workflow.Allowed(model.RoleCutting, model.StatusCutting))
	assert.False(t, workflow.Allowed(model.RoleCutting, model.StatusStitching))

	// Any stitching-department role may complete the stitching stage.
	for _, role := range []string{
		model.RoleStitching, model.RolePantMaker, model.RoleShirtMaker,
		model.RoleCoatMaker, model.RoleSafariMaker, model.RoleSherwaniMaker,
	} {
		assert.True(t, workflow.Allowed(role, model.StatusStitching), role)
	}
	assert.False(t, workflow.Allowed(model.RoleFinishing, model.StatusStitching))

	assert.True(t, workflow.Allowed(model.RoleKajButton, model.StatusKajButton))
	assert.True(t, workflow.Allowed(model.RoleFinishing, model.StatusFinishing))
	assert.True(t, workflow.Allowed(model.RoleDelivery, model.StatusReady))

	// Delivered is terminal: nobody moves it further.
	assert.False(t, workflow.Allowed(model.RoleAdmin, model.StatusDelivered))
	assert.False(t, workflow.Allowed(model.RoleDelivery, model.StatusDelivered))
}

func TestSplitComposites(t *testing.T) {
	suit := workflow.Split(model.CompositeSuit)
	require.Len(t, suit, 2)
	assert.Equal(t, model.GarmentCoat, suit[0].Type)
	assert.Equal(t, "COAT", suit[0].Suffix)
	assert.Equal(t, model.GarmentPant, suit[1].Type)
	assert.Equal(t, "PANT", suit[1].Suffix)

	safari := workflow.Split(model.CompositeSafariSuit)
	require.Len(t, safari, 2)
	assert.Equal(t, model.GarmentSafari, safari[0].Type)
	assert.Equal(t, model.GarmentPant, safari[1].Type)

	kurta := workflow.Split(model.CompositeKurtaPyjama)
	require.Len(t, kurta, 2)
	assert.Equal(t, model.GarmentKurta, kurta[0].Type)
	assert.Equal(t, model.GarmentPyjama, kurta[1].Type)
}

func TestSplitSimpleGarment(t *testing.T) {
	shirt := workflow.Split(model.GarmentShirt)
	require.Len(t, shirt, 1)
	assert.Equal(t, model.GarmentShirt, shirt[0].Type)
	assert.Equal(t, "SHIRT", shirt[0].Suffix)

	sherwani := workflow.Split(model.GarmentSherwani)
	require.Len(t, sherwani, 1)
	assert.Equal(t, "SHERWANI", sherwani[0].Suffix)
}

func TestValidStatus(t *testing.T) {
	assert.True(t, workflow.ValidStatus(model.StatusPending))
	assert.True(t, workflow.ValidStatus(model.StatusDelivered))
	assert.False(t, workflow.ValidStatus("SHIPPED"))
	assert.False(t, workflow.ValidStatus(""))
	assert.Equal(t, -1, workflow.Rank("SHIPPED"))
}
