package app

// Lines spoken by the agent outside of model replies.
const (
	Greeting = "I am Ultron. I was designed to save the world."
)
