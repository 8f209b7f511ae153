package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MarcGrol/deliverybackend/services/checkout"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Compute the totals of a cart",
	Long:  `Reads a cart in the checkout_cart/checkout_restaurant json format and prints subtotal, delivery fee, tax, tip and total in cents.`,
	Args:  cobra.NoArgs,
	RunE:  runPrice,
}

var (
	priceCartFile   string
	priceTipType    string
	priceTipPercent int
	priceTip        int64
)

func init() {
	priceCmd.Flags().StringVar(&priceCartFile, "cart", "", "json file holding the cart")
	priceCmd.Flags().StringVar(&priceTipType, "tip-type", string(checkout.TipTypePercentage), "percentage or fixed")
	priceCmd.Flags().IntVar(&priceTipPercent, "tip-percent", checkout.DefaultTipPercent, "tip as percentage of the subtotal")
	priceCmd.Flags().Int64Var(&priceTip, "tip", 0, "fixed tip in cents")
	_ = priceCmd.MarkFlagRequired("cart")
}

func runPrice(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(priceCartFile)
	if err != nil {
		return fmt.Errorf("error reading cart %s: %s", priceCartFile, err)
	}

	cart := checkout.Cart{}
	err = json.Unmarshal(data, &cart)
	if err != nil {
		return fmt.Errorf("error parsing cart %s: %s", priceCartFile, err)
	}

	tip, err := checkout.NewTipPolicy(priceTipType, &priceTipPercent, priceTip)
	if err != nil {
		return err
	}

	totals, err := checkout.CalculateTotals(cart.Items, tip)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(totals)
}
