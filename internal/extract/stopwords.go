package extract

// english is the stop word list used for candidate phrase boundaries.
var english = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "across": {}, "after": {}, "afterwards": {},
	"again": {}, "against": {}, "all": {}, "almost": {}, "alone": {}, "along": {},
	"already": {}, "also": {}, "although": {}, "always": {}, "am": {}, "among": {},
	"amongst": {}, "an": {}, "and": {}, "another": {}, "any": {}, "anyhow": {},
	"anyone": {}, "anything": {}, "anyway": {}, "anywhere": {}, "are": {}, "around": {},
	"as": {}, "at": {}, "back": {}, "be": {}, "became": {}, "because": {}, "become": {},
	"becomes": {}, "becoming": {}, "been": {}, "before": {}, "beforehand": {}, "behind": {},
	"being": {}, "below": {}, "beside": {}, "besides": {}, "between": {}, "beyond": {},
	"both": {}, "but": {}, "by": {}, "can": {}, "cannot": {}, "could": {}, "did": {},
	"do": {}, "does": {}, "doing": {}, "done": {}, "down": {}, "during": {}, "each": {},
	"either": {}, "else": {}, "elsewhere": {}, "enough": {}, "etc": {}, "even": {},
	"ever": {}, "every": {}, "everyone": {}, "everything": {}, "everywhere": {},
	"except": {}, "few": {}, "first": {}, "for": {}, "former": {}, "formerly": {},
	"from": {}, "further": {}, "get": {}, "gets": {}, "getting": {}, "give": {}, "go": {},
	"had": {}, "has": {}, "have": {}, "having": {}, "he": {}, "hence": {}, "her": {},
	"here": {}, "hereafter": {}, "hereby": {}, "herein": {}, "hereupon": {}, "hers": {},
	"herself": {}, "him": {}, "himself": {}, "his": {}, "how": {}, "however": {}, "i": {},
	"if": {}, "in": {}, "indeed": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"itself": {}, "just": {}, "keep": {}, "last": {}, "latter": {}, "latterly": {},
	"least": {}, "less": {}, "let": {}, "like": {}, "made": {}, "make": {}, "many": {},
	"may": {}, "me": {}, "meanwhile": {}, "might": {}, "mine": {}, "more": {},
	"moreover": {}, "most": {}, "mostly": {}, "much": {}, "must": {}, "my": {},
	"myself": {}, "namely": {}, "neither": {}, "never": {}, "nevertheless": {}, "next": {},
	"no": {}, "nobody": {}, "none": {}, "noone": {}, "nor": {}, "not": {}, "nothing": {},
	"now": {}, "nowhere": {}, "of": {}, "off": {}, "often": {}, "on": {}, "once": {},
	"one": {}, "only": {}, "onto": {}, "or": {}, "other": {}, "others": {}, "otherwise": {},
	"our": {}, "ours": {}, "ourselves": {}, "out": {}, "over": {}, "own": {}, "part": {},
	"per": {}, "perhaps": {}, "please": {}, "put": {}, "rather": {}, "re": {}, "really": {},
	"same": {}, "say": {}, "see": {}, "seem": {}, "seemed": {}, "seeming": {}, "seems": {},
	"several": {}, "she": {}, "should": {}, "show": {}, "side": {}, "since": {}, "so": {},
	"some": {}, "somehow": {}, "someone": {}, "something": {}, "sometime": {},
	"sometimes": {}, "somewhere": {}, "still": {}, "such": {}, "take": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "theirs": {}, "them": {}, "themselves": {},
	"then": {}, "thence": {}, "there": {}, "thereafter": {}, "thereby": {}, "therefore": {},
	"therein": {}, "thereupon": {}, "these": {}, "they": {}, "thing": {}, "things": {},
	"this": {}, "those": {}, "though": {}, "through": {}, "throughout": {}, "thru": {},
	"thus": {}, "to": {}, "together": {}, "too": {}, "toward": {}, "towards": {},
	"under": {}, "until": {}, "up": {}, "upon": {}, "us": {}, "use": {}, "used": {},
	"using": {}, "very": {}, "via": {}, "was": {}, "way": {}, "we": {}, "well": {},
	"were": {}, "what": {}, "whatever": {}, "when": {}, "whence": {}, "whenever": {},
	"where": {}, "whereafter": {}, "whereas": {}, "whereby": {}, "wherein": {},
	"whereupon": {}, "wherever": {}, "whether": {}, "which": {}, "while": {}, "whither": {},
	"who": {}, "whoever": {}, "whole": {}, "whom": {}, "whose": {}, "why": {}, "will": {},
	"with": {}, "within": {}, "without": {}, "would": {}, "yet": {}, "you": {}, "your": {},
	"yours": {}, "yourself": {}, "yourselves": {}, "can't": {}, "don't": {}, "doesn't": {},
	"didn't": {}, "isn't": {}, "aren't": {}, "wasn't": {}, "weren't": {}, "won't": {},
	"wouldn't": {}, "shouldn't": {}, "couldn't": {}, "it's": {}, "i'm": {}, "i've": {},
	"i'd": {}, "i'll": {}, "you're": {}, "you've": {}, "we're": {}, "we've": {},
	"they're": {}, "they've": {}, "that's": {}, "there's": {}, "here's": {}, "what's": {},
	"let's": {},
}
