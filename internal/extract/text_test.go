package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConversation_FullThread(t *testing.T) {
	e := NewEngine()

	res := e.ParseConversation(`2022 Toyota Tundra VIN 5TFHY5F1XKX839771, Brian at Toyota of Cedar Park, asking $52,000`, nil)

	assert.Equal(t, "Toyota", res.Vehicle.Make)
	assert.Equal(t, "Tundra", res.Vehicle.Model)
	assert.Equal(t, "5TFHY5F1XKX839771", res.Vehicle.VIN)
	assert.Equal(t, "Brian", res.Dealer.SalesRepName)
	assert.Contains(t, res.Dealer.Name, "Toyota of Cedar Park")
	require.NotNil(t, res.Pricing.AskingPrice)
	assert.Equal(t, 52000.0, *res.Pricing.AskingPrice)
}

func TestParseConversation_KnownDealerDirectoryOverride(t *testing.T) {
	e := NewEngine()

	// Contact details parsed from the text must lose to the directory
	// record for a recognized dealership.
	res := e.ParseConversation(`Toyota of Cedar Park quoted me $48,500. Reach them at random@gmail.com`, nil)

	assert.Equal(t, "Toyota of Cedar Park", res.Dealer.Name)
	assert.Equal(t, "sales@toyotaofcedarpark.com", res.Dealer.Email)
	assert.Equal(t, "(512) 778-0711", res.Dealer.Phone)
	assert.Equal(t, "https://www.toyotaofcedarpark.com", res.Dealer.Website)
}

func TestParseConversation_HintPreseedsDealer(t *testing.T) {
	e := NewEngine()

	hint := &DealerFacts{Name: "Joe's Auto Barn", Email: "joe@joesautobarn.com"}
	res := e.ParseConversation(`The 2021 Honda Accord is still available for $24,000. Call 512-555-1234.`, hint)

	assert.Equal(t, "Joe's Auto Barn", res.Dealer.Name)
	assert.Equal(t, "joe@joesautobarn.com", res.Dealer.Email)
	// Phone was not in the hint, so parsing fills it.
	assert.Equal(t, "512-555-1234", res.Dealer.Phone)
}

func TestExtractVIN(t *testing.T) {
	e := NewEngine()

	t.Run("uppercases and returns match", func(t *testing.T) {
		vin, year := e.ExtractVIN("vin is 5tfhy5f1xkx839771 per the window sticker")
		assert.Equal(t, "5TFHY5F1XKX839771", vin)
		assert.Nil(t, year)
	})

	t.Run("decodes year for recognized prefix", func(t *testing.T) {
		vin, year := e.ExtractVIN("VIN 1HGCV1F34LA123456")
		assert.Equal(t, "1HGCV1F34LA123456", vin)
		require.NotNil(t, year)
		assert.Equal(t, 2020, *year)
	})

	t.Run("rejects I O Q alphabet", func(t *testing.T) {
		vin, _ := e.ExtractVIN("token IOQIOQIOQIOQIOQIO here")
		assert.Empty(t, vin)
	})

	t.Run("ignores shorter tokens", func(t *testing.T) {
		vin, _ := e.ExtractVIN("stock number AB1234 is not a vin")
		assert.Empty(t, vin)
	})
}

func TestExtractMakeModel(t *testing.T) {
	e := NewEngine()

	t.Run("table pair wins", func(t *testing.T) {
		mk, md := e.ExtractMakeModel("interested in the toyota tacoma you listed")
		assert.Equal(t, "Toyota", mk)
		assert.Equal(t, "Tacoma", md)
	})

	t.Run("earliest table pair wins", func(t *testing.T) {
		mk, md := e.ExtractMakeModel("Honda Accord or maybe the Toyota Camry")
		assert.Equal(t, "Honda", mk)
		assert.Equal(t, "Accord", md)
	})

	t.Run("falls back to make plus free token", func(t *testing.T) {
		mk, md := e.ExtractMakeModel("the Ford Maverick hybrid")
		assert.Equal(t, "Ford", mk)
		assert.Equal(t, "Maverick", md)
	})

	t.Run("no match", func(t *testing.T) {
		mk, md := e.ExtractMakeModel("see you tomorrow at noon")
		assert.Empty(t, mk)
		assert.Empty(t, md)
	})
}

func TestExtractSalesRep(t *testing.T) {
	e := NewEngine()

	t.Run("first name followed by make", func(t *testing.T) {
		assert.Equal(t, "Brian", e.ExtractSalesRep("Brian at Toyota of Cedar Park"))
	})

	t.Run("first name with no make context", func(t *testing.T) {
		assert.Empty(t, e.ExtractSalesRep("Brian will call you back"))
	})

	t.Run("capitalized non-name word skipped", func(t *testing.T) {
		assert.Equal(t, "Sarah", e.ExtractSalesRep("Regards Sarah, Round Rock Honda"))
	})
}

func TestExtractDealerName(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"make of city", "stopped by Toyota of Cedar Park today", "Toyota of Cedar Park"},
		{"words then make", "quote from Covert Ford yesterday", "Covert Ford"},
		{"generic suffix", "visited Apple Sport Motors on Saturday", "Apple Sport Motors"},
		{"nothing", "let me think it over", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ExtractDealerName(tt.text))
		})
	}
}

func TestExtractEmail(t *testing.T) {
	e := NewEngine()

	t.Run("business address", func(t *testing.T) {
		assert.Equal(t, "brian@toyotaofcedarpark.com", e.ExtractEmail("write to brian@toyotaofcedarpark.com"))
	})

	t.Run("webmail skipped", func(t *testing.T) {
		assert.Empty(t, e.ExtractEmail("my personal is buyer99@gmail.com"))
	})

	t.Run("webmail skipped then business taken", func(t *testing.T) {
		got := e.ExtractEmail("cc buyer99@gmail.com and sales@covertford.com")
		assert.Equal(t, "sales@covertford.com", got)
	})
}

func TestExtractPhone(t *testing.T) {
	e := NewEngine()

	assert.Equal(t, "(512) 778-0711", e.ExtractPhone("call (512) 778-0711 anytime"))
	assert.Equal(t, "512.778.0711", e.ExtractPhone("or 512.778.0711"))
	assert.Empty(t, e.ExtractPhone("no number here"))
}

func TestExtractPrice_Conversation(t *testing.T) {
	e := NewEngine()

	t.Run("max of multiple amounts wins", func(t *testing.T) {
		p := e.ExtractPrice("they want $45,000 but I countered $42,000", ContextConversation)
		require.NotNil(t, p)
		assert.Equal(t, 45000.0, *p)
	})

	t.Run("below conversation floor ignored", func(t *testing.T) {
		assert.Nil(t, e.ExtractPrice("doc fee is $4,999", ContextConversation))
	})

	t.Run("floor boundary included", func(t *testing.T) {
		p := e.ExtractPrice("lowest I can go is $5,000", ContextConversation)
		require.NotNil(t, p)
		assert.Equal(t, 5000.0, *p)
	})

	t.Run("above ceiling ignored", func(t *testing.T) {
		assert.Nil(t, e.ExtractPrice("the building cost $200,001", ContextConversation))
	})

	t.Run("cents dropped", func(t *testing.T) {
		p := e.ExtractPrice("total comes to $52,000.00", ContextConversation)
		require.NotNil(t, p)
		assert.Equal(t, 52000.0, *p)
	})

	t.Run("no dollar sign no match", func(t *testing.T) {
		assert.Nil(t, e.ExtractPrice("around 52000 or so", ContextConversation))
	})
}

func TestExtractPrice_ListingBounds(t *testing.T) {
	e := NewEngine()

	p := e.ExtractPrice("clearance special $1,500", ContextHTMLListing)
	require.NotNil(t, p)
	assert.Equal(t, 1500.0, *p)

	// Same figure is below the conversation floor.
	assert.Nil(t, e.ExtractPrice("clearance special $1,500", ContextConversation))

	p = e.ExtractPrice("exotic listed at $350,000", ContextHTMLListing)
	require.NotNil(t, p)
	assert.Equal(t, 350000.0, *p)
}

func TestExtractOfferPrice(t *testing.T) {
	e := NewEngine()

	p, ok := e.ExtractOfferPrice("we can do $31,500 out the door")
	require.True(t, ok)
	assert.Equal(t, 31500.0, *p)

	p, ok = e.ExtractOfferPrice("let me check with my manager")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestExtractMileage(t *testing.T) {
	e := NewEngine()

	t.Run("plain miles", func(t *testing.T) {
		m := e.ExtractMileage("only 34,500 miles on it")
		require.NotNil(t, m)
		assert.Equal(t, 34500, *m)
	})

	t.Run("k shorthand", func(t *testing.T) {
		m := e.ExtractMileage("it has 42k miles")
		require.NotNil(t, m)
		assert.Equal(t, 42000, *m)
	})

	t.Run("plain form preferred over k form", func(t *testing.T) {
		m := e.ExtractMileage("odometer reads 34,500 miles, call it 35k")
		require.NotNil(t, m)
		assert.Equal(t, 34500, *m)
	})

	t.Run("out of range discarded", func(t *testing.T) {
		assert.Nil(t, e.ExtractMileage("warranty covers 600,000 miles"))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Nil(t, e.ExtractMileage("fresh trade just landed"))
	})
}

func TestExtractStockNumber(t *testing.T) {
	e := NewEngine()

	assert.Equal(t, "T12345", e.ExtractStockNumber("Stock #T12345 just arrived"))
	assert.Equal(t, "A9-88", e.ExtractStockNumber("stk: A9-88"))
	assert.Empty(t, e.ExtractStockNumber("no inventory details"))
}
