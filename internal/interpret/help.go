package interpret

// HelpText is the static usage message returned when a user direct-messages
// the bot the single word "help".
const HelpText = `To use Tutor, first invite the app to any channels where you'd like to be able to fetch card information. You can also fetch cards privately from the comfort of this direct message. To fetch a card, simply post a message like *[[Card Name]]*, with square brackets, to fetch by name. You can also use full <https://scryfall.com/docs/syntax|Scryfall search syntax> to find cards by criteria by using curly braces, as in *{{t:planeswalker set:WAR ci=ubr}}*.

By default, cards will be returned as full card images. If you want to change what information to display for your result, you can add a *:command* to the end, as in *[[Lightning Bolt]]:art* to fetch the cropped art only. The full list of supported commands is as follows:

  • *:art*  Image of the cropped art for this card.
  • *:oracle*  The oracle text for this card.
  • *:price*  Current price for this card, summarized across all relevant printings (currently paper prices only).
  • *:reserved*  This card's status on the reserved list (either reserved or not reserved).
  • *:flavor*  This card's flavor text.
  • *:legality*  Display a table of formats this card is legal or banned in.

*[[Card Name]]* style fetches must resolve to a single card; if your query matches multiple cards, you will need to clarify your request. *{{Scryfall Query}}* style requests will return the first hit from Scryfall, by default using EDHREC rating sort.

If you wish to change how results are sorted for query requests, you can append a sort criteria to your query, as in {{Lightning Bolt}}>usd to fetch the most expensive printing of Lightning Bolt. Valid sort keys are defined by Scryfall; at present they are artist, cmc, power, toughness, set, name, usd, tix, eur, rarity, color, released, spoiled, and edhrec (default). Using a less than sign *<* will sort ascending, while *&gt;* will sort descending. If you are combining a sort and a *:command*, the sort must come before the command, as in *{{Llanowar Elves}}<released:flavor* to find the flavor text for the oldest printing of Llanowar Elves.`
