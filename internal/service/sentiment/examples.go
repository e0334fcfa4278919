package sentiment

// Example pairs a short journal snippet with its sentiment label. The set is
// embedded into every classification prompt as few-shot guidance.
type Example struct {
	Text  string
	Label string
}

var moodExamples = []Example{
	{"I got the job offer this morning and I can't stop smiling", "Happy"},
	{"Dinner with my old friends was exactly what I needed", "Happy"},
	{"Everything went right today for once", "Happy"},
	{"I miss her so much it hurts", "Sad"},
	{"Nothing feels worth doing anymore", "Sad"},
	{"I cried on the way home again", "Sad"},
	{"My manager took credit for my work in front of everyone", "Angry"},
	{"I'm sick of being talked over in every meeting", "Angry"},
	{"He broke his promise again and I'm furious", "Angry"},
	{"I spent the evening reading by the window, no rush at all", "Calm"},
	{"The walk by the river really settled my thoughts", "Calm"},
	{"Today was quiet and that was enough", "Calm"},
	{"I keep imagining everything that could go wrong tomorrow", "Fear"},
	{"My heart races every time the phone rings", "Fear"},
	{"I'm terrified of telling them the truth", "Fear"},
	{"I can't stop thinking about whether I said the wrong thing", "Worry"},
	{"What if the results come back bad", "Worry"},
	{"I keep checking my email for a reply that isn't coming", "Worry"},
	{"I finally understand why I keep repeating that pattern", "Insightful"},
	{"Writing it down made me realize what I actually want", "Insightful"},
	{"Looking back, the fight was never about the dishes", "Insightful"},
}
