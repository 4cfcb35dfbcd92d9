package wizard

// Step is a wizard screen.
type Step int

const (
	StepWelcome Step = iota
	StepGenres
	StepMovies
	StepContext
	StepDealBreakers
	StepProcessing
	StepRecommendation
	StepError
	StepGallery
	StepProfile
	StepWatchlist
	StepMovieDetails
)

var stepNames = map[Step]string{
	StepWelcome:        "welcome",
	StepGenres:         "genres",
	StepMovies:         "movies",
	StepContext:        "context",
	StepDealBreakers:   "dealbreakers",
	StepProcessing:     "processing",
	StepRecommendation: "recommendation",
	StepError:          "error",
	StepGallery:        "gallery",
	StepProfile:        "profile",
	StepWatchlist:      "watchlist",
	StepMovieDetails:   "movieDetails",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsScreen reports whether s is one of the side screens reachable by navigation.
func (s Step) IsScreen() bool {
	return s == StepGallery || s == StepProfile || s == StepWatchlist
}

// Trigger names what caused a transition.
type Trigger string

const (
	TriggerNext         Trigger = "next"
	TriggerNotForMe     Trigger = "not for me"
	TriggerRetry        Trigger = "retry"
	TriggerRecommended  Trigger = "recommended"
	TriggerFailed       Trigger = "failed"
	TriggerUnauthorized Trigger = "unauthorized"
	TriggerExpired      Trigger = "session expired"
	TriggerStartOver    Trigger = "start over"
	TriggerNavigate     Trigger = "navigate"
	TriggerShowMovie    Trigger = "show movie"
	TriggerBack         Trigger = "back"
)

// Transition is published after every step change.
type Transition struct {
	From    Step
	To      Step
	Trigger Trigger
}
