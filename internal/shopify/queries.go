package shopify

// GraphQL documents sent to the Storefront API. The fragments mirror the
// projections the rest of the service relies on: products carry up to 10
// images and variants, carts carry up to 50 lines.

const productFragment = `
fragment ProductFields on Product {
  id
  title
  handle
  description
  descriptionHtml
  availableForSale
  priceRange {
    minVariantPrice { amount currencyCode }
    maxVariantPrice { amount currencyCode }
  }
  compareAtPriceRange {
    minVariantPrice { amount currencyCode }
  }
  images(first: 10) {
    edges { node { url altText width height } }
  }
  variants(first: 10) {
    edges {
      node {
        id
        title
        availableForSale
        price { amount currencyCode }
        compareAtPrice { amount currencyCode }
      }
    }
  }
  seo { title description }
}
`

const cartFragment = `
fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    totalAmount { amount currencyCode }
    subtotalAmount { amount currencyCode }
  }
  lines(first: 50) {
    edges {
      node {
        id
        quantity
        cost { totalAmount { amount currencyCode } }
        merchandise {
          ... on ProductVariant {
            id
            title
            product {
              title
              handle
              images(first: 1) { edges { node { url altText } } }
            }
            price { amount currencyCode }
          }
        }
      }
    }
  }
}
`

const shopQuery = `
query getShop {
  shop { name }
}
`

const productQuery = productFragment + `
query getProduct($handle: String!) {
  product(handle: $handle) { ...ProductFields }
}
`

const productsQuery = productFragment + `
query getProducts {
  products(first: 20) {
    edges { node { ...ProductFields } }
  }
}
`

const cartCreateMutation = cartFragment + `
mutation createCart($input: CartInput!) {
  cartCreate(input: $input) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
`

const cartLinesAddMutation = cartFragment + `
mutation addToCart($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
`

const cartLinesUpdateMutation = cartFragment + `
mutation updateCartLine($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
`

const cartLinesRemoveMutation = cartFragment + `
mutation removeFromCart($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
`

const cartQuery = cartFragment + `
query getCart($cartId: ID!) {
  cart(id: $cartId) { ...CartFields }
}
`
