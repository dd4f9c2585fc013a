package idgen

// Adjectives is the default first dictionary. Every entry is lowercase ASCII letters only.
var Adjectives = []string{
	"able", "absent", "amber", "ancient", "angry", "arctic", "awake", "bashful",
	"big", "bitter", "blue", "bold", "brave", "brief", "bright", "brisk",
	"busy", "calm", "careful", "cheerful", "chilly", "clever", "cloudy", "cosmic",
	"crimson", "crisp", "curious", "daring", "dazzling", "eager", "early", "electric",
	"elegant", "empty", "fancy", "fast", "fierce", "fluffy", "fond", "frosty",
	"funny", "gentle", "giant", "gifted", "glad", "golden", "graceful", "grand",
	"green", "grumpy", "happy", "hidden", "honest", "humble", "hungry", "icy",
	"jolly", "keen", "kind", "lazy", "little", "lively", "lonely", "loud",
	"lucky", "mellow", "merry", "mighty", "misty", "modest", "noble", "odd",
	"orange", "patient", "plucky", "polite", "proud", "purple", "quick", "quiet",
	"rapid", "rare", "restless", "rosy", "rustic", "scarlet", "shiny", "shy",
	"silent", "silver", "sleepy", "sly", "small", "smooth", "snowy", "solar",
	"sour", "spicy", "steady", "stormy", "sunny", "swift", "tall", "tender",
	"tidy", "tiny", "tough", "tranquil", "vast", "violet", "wandering", "warm",
	"wild", "windy", "wise", "witty", "young", "zany", "zealous", "zesty",
}

// Animals is the default second dictionary.
var Animals = []string{
	"albatross", "alpaca", "ant", "antelope", "armadillo", "badger", "bat", "bear",
	"beaver", "bee", "bison", "boar", "buffalo", "butterfly", "camel", "capybara",
	"cat", "cheetah", "chicken", "chipmunk", "cobra", "cougar", "cow", "coyote",
	"crab", "crane", "crow", "deer", "dingo", "dog", "dolphin", "donkey",
	"dove", "dragonfly", "duck", "eagle", "eel", "elephant", "elk", "emu",
	"falcon", "ferret", "finch", "flamingo", "fox", "frog", "gazelle", "gecko",
	"gerbil", "giraffe", "goat", "goose", "gorilla", "grasshopper", "hamster", "hare",
	"hawk", "hedgehog", "heron", "hippo", "horse", "hummingbird", "hyena", "ibex",
	"iguana", "impala", "jackal", "jaguar", "jellyfish", "kangaroo", "kingfisher", "koala",
	"lemur", "leopard", "lion", "llama", "lobster", "lynx", "magpie", "manatee",
	"meerkat", "mink", "mole", "mongoose", "moose", "moth", "mouse", "narwhal",
	"newt", "ocelot", "octopus", "opossum", "orca", "ostrich", "otter", "owl",
	"ox", "panda", "panther", "parrot", "peacock", "pelican", "penguin", "pig",
	"pony", "porcupine", "puffin", "quail", "rabbit", "raccoon", "raven", "reindeer",
	"salmon", "seal", "shark", "sheep", "sloth", "sparrow", "squid", "squirrel",
	"stork", "swan", "tiger", "toad", "toucan", "turtle", "viper", "walrus",
	"weasel", "whale", "wolf", "wombat", "woodpecker", "yak", "zebra",
}
