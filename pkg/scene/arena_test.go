package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boristopalov/batonpass/pkg/core"
	"github.com/boristopalov/batonpass/pkg/messaging"
)

func TestArena(t *testing.T) {
	t.Run("spawn issues unique handles", func(t *testing.T) {
		a := NewArena("area", core.Vec3{}, messaging.NewBroker(), nil)
		h1, err := a.Spawn(core.Vec3{X: 1}, "area")
		require.NoError(t, err)
		h2, err := a.Spawn(core.Vec3{X: 2}, "area")
		require.NoError(t, err)

		assert.NotEqual(t, h1, h2)
		assert.True(t, strings.HasPrefix(h1.String(), "agent-"))

		live := a.Live()
		require.Len(t, live, 2)
		assert.Equal(t, h1, live[0].Handle)
		assert.Equal(t, 2.0, live[1].Position.X)
	})

	t.Run("destroy removes the body once", func(t *testing.T) {
		a := NewArena("area", core.Vec3{}, messaging.NewBroker(), nil)
		h, _ := a.Spawn(core.Vec3{}, "area")

		require.NoError(t, a.Destroy(h))
		assert.Error(t, a.Destroy(h))
		assert.Empty(t, a.Live())
	})

	t.Run("touches publish events", func(t *testing.T) {
		bus := messaging.NewBroker()
		a := NewArena("area", core.Vec3{}, bus, nil)
		h, _ := a.Spawn(core.Vec3{}, "area")

		var topics []messaging.Topic
		record := func(m messaging.Message) { topics = append(topics, m.Topic) }
		require.NoError(t, bus.Subscribe("test", messaging.ButtonPressed, record))
		require.NoError(t, bus.Subscribe("test", messaging.FoodConsumed, record))

		require.NoError(t, a.TouchButton(h))
		require.NoError(t, a.TouchFood(h)) // food inactive, dropped
		a.Food.SetActive(true)
		require.NoError(t, a.TouchFood(h))

		assert.Equal(t, []messaging.Topic{messaging.ButtonPressed, messaging.FoodConsumed}, topics)
		assert.Error(t, a.TouchButton("ghost"))
		assert.Error(t, a.TouchFood("ghost"))
	})
}

func TestButton(t *testing.T) {
	b := &Button{position: core.Vec3{X: 4}}
	assert.False(t, b.Pressed())

	b.SetActivated()
	b.SetActivated()
	assert.True(t, b.Pressed())
	assert.Equal(t, 1, b.Activations())

	b.Reset()
	assert.False(t, b.Pressed())
	assert.Equal(t, 1, b.Resets())
	assert.Equal(t, 4.0, b.Position().X)
}
