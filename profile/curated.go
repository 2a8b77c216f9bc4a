package profile

var curatedProfiles = map[string]Record{
	"elonmusk": {
		DisplayName:    "Elon Musk",
		Bio:            "CEO of Tesla, SpaceX & xAI. Building sustainable transport & making life multiplanetary 🚀",
		Location:       "Austin, Texas",
		FollowerCount:  150200000,
		FollowingCount: 313,
		TweetCount:     45230,
		Verified:       true,
		Website:        "https://x.ai",
		RecentActivity: []Activity{
			{Text: "Starship test flight achieved incredible altitude today! Next stop: orbit 🚀", LikeCount: 125000, ShareCount: 25000, ReplyCount: 8900},
			{Text: "Tesla FSD v12 showing remarkable improvements in city driving. The neural net is getting scary good", LikeCount: 89000, ShareCount: 15600, ReplyCount: 12300},
			{Text: "Mars colony plans advancing. 2029 launch window still achievable with current Raptor engine improvements", LikeCount: 76000, ShareCount: 18900, ReplyCount: 5400},
			{Text: "Neuralink patient can now control computer with thoughts alone. This is just the beginning", LikeCount: 156000, ShareCount: 34000, ReplyCount: 21000},
			{Text: "X platform monthly active users hit new all-time high. Free speech is working 🔥", LikeCount: 95000, ShareCount: 22000, ReplyCount: 15600},
		},
	},
	"billgates": {
		DisplayName:    "Bill Gates",
		Bio:            "Co-chair of the Bill & Melinda Gates Foundation. Focused on helping people lead healthy, productive lives.",
		Location:       "Seattle, WA",
		FollowerCount:  62500000,
		FollowingCount: 274,
		TweetCount:     3850,
		Verified:       true,
		Website:        "https://gatesnotes.com",
		RecentActivity: []Activity{
			{Text: "Exciting progress in malaria prevention with new bed net technology. Could save millions of lives", LikeCount: 18500, ShareCount: 6800, ReplyCount: 1200},
			{Text: "Climate innovation requires collaboration between public and private sectors. Recent breakthrough in green cement promising", LikeCount: 22000, ShareCount: 8900, ReplyCount: 2100},
			{Text: "Education technology can help bridge learning gaps globally. New AI tutoring systems showing 40% improvement", LikeCount: 15600, ShareCount: 4200, ReplyCount: 890},
			{Text: "Vaccine development for next pandemic must start now. We cannot afford to be unprepared again", LikeCount: 34000, ShareCount: 12000, ReplyCount: 5600},
			{Text: `Reading "The Better Angels of Our Nature" - fascinating insights on how violence has declined throughout history`, LikeCount: 12800, ShareCount: 3400, ReplyCount: 1800},
		},
	},
	"sundarpichai": {
		DisplayName:    "Sundar Pichai",
		Bio:            "CEO of Google and Alphabet. Focused on making technology helpful for everyone.",
		Location:       "Mountain View, CA",
		FollowerCount:  5200000,
		FollowingCount: 156,
		TweetCount:     1240,
		Verified:       true,
		Website:        "https://abc.xyz",
		RecentActivity: []Activity{
			{Text: "Gemini AI showing incredible progress in reasoning capabilities. Exciting times ahead for AI research", LikeCount: 45000, ShareCount: 12000, ReplyCount: 3400},
			{Text: "Our quantum computer achieved new breakthrough in error correction. One step closer to practical quantum computing", LikeCount: 38000, ShareCount: 9800, ReplyCount: 2100},
			{Text: "Google Search now processes over 8.5 billion queries daily. Grateful for the trust users place in our products", LikeCount: 28000, ShareCount: 7200, ReplyCount: 1800},
			{Text: "Celebrating our AI for Social Good initiatives. Technology should benefit everyone, everywhere", LikeCount: 22000, ShareCount: 5900, ReplyCount: 1200},
			{Text: "Excited about our new sustainability commitments. Carbon neutral by 2030 is within reach", LikeCount: 19000, ShareCount: 4800, ReplyCount: 950},
		},
	},
}
