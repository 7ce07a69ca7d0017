package language

// romanizedHindi 는 영어 단어와 겹치지 않는 흔한 로마자 힌디 어휘다.
// main, to, hi, us, log, mat, the, app, par 처럼 영어와 겹치는 단어는 제외한다.
var romanizedHindi = []string{
	"aap", "aapka", "aapki", "aapke", "tum", "tumhara", "tumhari", "tera", "teri", "mera", "meri", "mere",
	"hamara", "hamari", "kya", "kyu", "kyun", "kyon", "kaise", "kaisa", "kaisi", "kesi", "kese",
	"kaun", "kon", "kahan", "kaha", "kab", "kitna", "kitne", "kitni", "hai", "hain", "hu", "hoon", "ho",
	"tha", "thi", "nahi", "nahin", "nai", "haan", "acha", "accha", "achha", "theek", "thik",
	"bhai", "behen", "yaar", "yar", "dost", "beta", "beti", "didi", "bhaiya", "aunty", "ji", "arre", "arey",
	"abhi", "kal", "aaj", "raat", "subah", "shaam", "bahut", "bohot", "bahot", "thoda", "zyada", "jyada",
	"khana", "pani", "ghar", "kaam", "paisa", "pyaar", "pyar", "dil", "dimag", "samajh", "samjha", "pata",
	"chahiye", "karna", "karo", "kar", "karte", "kiya", "gaya", "gayi", "jana", "jao", "aao", "aaja",
	"bolo", "bol", "batao", "bata", "suno", "dekho", "chalo", "chal", "raha", "rahi", "rahe", "sakta",
	"sakti", "wala", "wali", "waala", "mujhe", "tujhe", "humko", "tumko", "unko", "isko", "usko", "kuch",
	"sab", "koi", "aur", "lekin", "phir", "matlab", "sahi", "galat", "shukriya", "dhanyavad",
	"namaste", "namaskar", "badiya", "badhiya", "bekar", "pagal", "chup", "jaldi", "dheere",
	"bhi", "sirf", "bas", "wahi", "yahi", "yahan", "wahan", "kyunki", "agar", "toh", "hota", "hoti",
}
