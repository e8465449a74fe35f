// Command stockctl prints a product, or only its stock, through the catalog
// gRPC service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/example/shopfront/pkg/config"
	"github.com/example/shopfront/pkg/discovery"
	shopgrpc "github.com/example/shopfront/pkg/grpc"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
)

func main() {
	var (
		addr      = flag.String("addr", "127.0.0.1:50051", "catalog address, used when discovery finds nothing")
		endpoints = flag.String("etcd", "", "comma-separated etcd endpoints")
		prefix    = flag.String("prefix", "/services/", "etcd key prefix")
		name      = flag.String("service", "shop-catalog", "registered catalog service name")
		stockOnly = flag.Bool("stock", false, "print only the stock count")
		timeout   = flag.Duration("timeout", 5*time.Second, "request timeout")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <product-id>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	var id uint64
	if _, err := fmt.Sscan(flag.Arg(0), &id); err != nil || id == 0 {
		fmt.Fprintf(os.Stderr, "invalid product id %q\n", flag.Arg(0))
		os.Exit(2)
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var disc *discovery.ServiceDiscovery
	if *endpoints != "" {
		disc, err = discovery.NewServiceDiscovery(&config.EtcdConfig{
			Endpoints:   strings.Split(*endpoints, ","),
			DialTimeout: 2 * time.Second,
			Prefix:      *prefix,
		}, log)
		if err != nil {
			log.Warn("Failed to connect to etcd", zap.Error(err))
		} else {
			defer disc.Close()
		}
	}

	client, err := shopgrpc.Dial(shopgrpc.ResolveTarget(ctx, disc, *name, *addr, log))
	if err != nil {
		log.Fatal("Failed to create catalog client", zap.Error(err))
	}
	defer client.Close()

	if *stockOnly {
		stock, err := client.GetStock(ctx, id)
		if err != nil {
			log.Fatal("GetStock failed", zap.Error(err))
		}
		fmt.Println(stock)
		return
	}

	product, err := client.GetProduct(ctx, id)
	if err != nil {
		log.Fatal("GetProduct failed", zap.Error(err))
	}
	out, err := protojson.MarshalOptions{Multiline: true}.Marshal(product)
	if err != nil {
		log.Fatal("Failed to encode product", zap.Error(err))
	}
	fmt.Println(string(out))
}
