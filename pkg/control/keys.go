package control

// Action is an input command understood by the Controller
type Action int

const (
	None Action = iota
	MoveForward
	MoveBack
	StrafeLeft
	StrafeRight
	MoveUp
	MoveDown
	SphereLeft
	SphereRight
	SphereUp
	SphereDown
	SphereBack
	SphereForward
)

var actionNames = map[Action]string{
	None:          "none",
	MoveForward:   "move-forward",
	MoveBack:      "move-back",
	StrafeLeft:    "strafe-left",
	StrafeRight:   "strafe-right",
	MoveUp:        "move-up",
	MoveDown:      "move-down",
	SphereLeft:    "sphere-left",
	SphereRight:   "sphere-right",
	SphereUp:      "sphere-up",
	SphereDown:    "sphere-down",
	SphereBack:    "sphere-back",
	SphereForward: "sphere-forward",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Binding maps key names to an action
type Binding struct {
	Keys   []string
	Action Action
}

// Bindings is the keyboard layout. W/S and A/D move the camera in the view
// plane, E/Q along the up vector. Arrows move the focus sphere in x and y,
// brackets in z.
var Bindings = []Binding{
	{Keys: []string{"w"}, Action: MoveForward},
	{Keys: []string{"s"}, Action: MoveBack},
	{Keys: []string{"a"}, Action: StrafeLeft},
	{Keys: []string{"d"}, Action: StrafeRight},
	{Keys: []string{"e"}, Action: MoveUp},
	{Keys: []string{"q"}, Action: MoveDown},
	{Keys: []string{"left"}, Action: SphereLeft},
	{Keys: []string{"right"}, Action: SphereRight},
	{Keys: []string{"up"}, Action: SphereUp},
	{Keys: []string{"down"}, Action: SphereDown},
	{Keys: []string{"["}, Action: SphereBack},
	{Keys: []string{"]"}, Action: SphereForward},
}

// ActionForKey returns the action bound to a key name, or None
func ActionForKey(key string) Action {
	for _, b := range Bindings {
		for _, k := range b.Keys {
			if k == key {
				return b.Action
			}
		}
	}
	return None
}
