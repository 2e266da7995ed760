package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/clients"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/config"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/services"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "path to the yaml configuration")
	flag.Parse()

	fmt.Println("🔍 Verifying RPC connection and treasury setup...")
	fmt.Println(strings.Repeat("=", 60))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dispenser, err := cfg.Dispenser.Validate()
	if err != nil {
		log.Fatalf("Invalid dispenser configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := clients.DialERC1155Client(ctx, dispenser, logger)
	if err != nil {
		log.Fatalf("Failed to connect to RPC: %v", err)
	}
	defer client.Close()

	snapshot, err := services.NewMonitoringService(client, dispenser, logger).Snapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to read treasury: %v", err)
	}

	ok := true
	fmt.Printf("📋 Connected to chain: %s (%d)\n", snapshot.Network.Name, snapshot.Network.ChainID)
	if snapshot.Network.ChainID != dispenser.ExpectedChainID {
		ok = false
		fmt.Printf("❌ Expected chain %d (%s)\n", dispenser.ExpectedChainID, utils.EVMChainName(dispenser.ExpectedChainID))
	} else {
		fmt.Println("✅ Chain matches configuration")
	}

	fmt.Printf("📋 Signer:   %s\n", snapshot.Signer)
	fmt.Printf("📋 Treasury: %s\n", snapshot.Treasury)
	if !snapshot.SignerMatchesTreasury {
		ok = false
		fmt.Println("❌ Private key does not control the treasury address")
	} else {
		fmt.Println("✅ Signer controls the treasury")
	}

	fmt.Printf("📋 Native balance: %.6f %s\n", snapshot.NativeBalance, snapshot.NativeSymbol)
	if snapshot.NativeBalanceWei == "0" {
		ok = false
		fmt.Println("❌ Treasury cannot pay for gas")
	}

	fmt.Printf("📋 Token %s on %s: balance %s, %s per recipient\n",
		snapshot.TokenID, snapshot.Contract, snapshot.TokenBalance, snapshot.AmountPerRecipient)
	if snapshot.RemainingDisbursements == "0" {
		ok = false
		fmt.Println("❌ Treasury holds less than one disbursement")
	} else {
		fmt.Printf("✅ %s disbursements remaining\n", snapshot.RemainingDisbursements)
	}

	fees := snapshot.EffectiveFees
	fmt.Printf("📋 Fee model: %s\n", fees.Model)
	if fees.GasPrice != nil {
		fmt.Printf("   gasPrice: %s wei\n", fees.GasPrice)
	} else {
		fmt.Printf("   maxPriorityFeePerGas: %s wei\n", fees.TipCap)
		fmt.Printf("   maxFeePerGas: %s wei\n", fees.FeeCap)
	}
	if snapshot.SuggestedFees == nil {
		fmt.Println("⚠️  Node offered no fee suggestion, floors will be used")
	}

	fmt.Println(strings.Repeat("=", 60))
	if !ok {
		log.Fatal("❌ Verification failed")
	}
	fmt.Println("✅ Ready to disburse")
}
