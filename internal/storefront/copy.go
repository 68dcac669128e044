package storefront

type copyText struct {
	Headline     string
	Intro        string
	ChooseGoal   string
	Followers    string
	Username     string
	Email        string
	PromoCode    string
	Apply        string
	Pay          string
	Secure       string
	Language     string
	ThankYou     string
	ThankYouBody string
	BackHome     string
	Support      string
}

var copies = map[string]copyText{
	"en": {
		Headline:     "Grow your %s audience",
		Intro:        "Real visibility campaigns, delivered gradually. Pick a goal to get started.",
		ChooseGoal:   "Choose your goal",
		Followers:    "followers",
		Username:     "Username or link",
		Email:        "Email",
		PromoCode:    "Promo code",
		Apply:        "Apply",
		Pay:          "Pay",
		Secure:       "Secure card payment by Stripe",
		Language:     "Français",
		ThankYou:     "Thank you for your order!",
		ThankYouBody: "Your campaign starts shortly. A confirmation email is on its way.",
		BackHome:     "Back to the home page",
		Support:      "Need help? Write to us",
	},
	"fr": {
		Headline:     "Développez votre audience %s",
		Intro:        "De vraies campagnes de visibilité, livrées progressivement. Choisissez un objectif pour commencer.",
		ChooseGoal:   "Choisissez votre objectif",
		Followers:    "abonnés",
		Username:     "Nom d'utilisateur ou lien",
		Email:        "E-mail",
		PromoCode:    "Code promo",
		Apply:        "Appliquer",
		Pay:          "Payer",
		Secure:       "Paiement par carte sécurisé par Stripe",
		Language:     "English",
		ThankYou:     "Merci pour votre commande !",
		ThankYouBody: "Votre campagne démarre bientôt. Un e-mail de confirmation vous a été envoyé.",
		BackHome:     "Retour à l'accueil",
		Support:      "Besoin d'aide ? Écrivez-nous",
	},
}
